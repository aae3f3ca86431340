package sqlite

import (
	"context"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
)

type moodsRepo struct {
	q queryer
}

const moodColumns = `id, user_tag, mood, note, created_at, updated_at`

func (r *moodsRepo) CreateEntry(ctx context.Context, e domain.MoodEntry) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO mood_entries (id, user_tag, mood, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserTag, e.Mood, e.Note, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	return mapConstraint(err)
}

func (r *moodsRepo) UpdateEntry(ctx context.Context, id string, mood int, note string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE mood_entries SET mood = ?, note = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, mood, note, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *moodsRepo) GetEntrySince(ctx context.Context, userTag string, since time.Time) (domain.MoodEntry, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+moodColumns+` FROM mood_entries
		 WHERE user_tag = ? AND created_at >= ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, userTag, since.UTC())
	e, err := scanMoodEntry(row)
	return e, mapNotFound(err)
}

func (r *moodsRepo) ListSince(ctx context.Context, userTag string, since time.Time) ([]domain.MoodEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+moodColumns+` FROM mood_entries
		 WHERE user_tag = ? AND created_at >= ?
		 ORDER BY created_at DESC, id DESC`, userTag, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.MoodEntry
	for rows.Next() {
		e, err := scanMoodEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanMoodEntry(row rowScanner) (domain.MoodEntry, error) {
	var e domain.MoodEntry
	err := row.Scan(&e.ID, &e.UserTag, &e.Mood, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.MoodEntry{}, err
	}
	return e, nil
}
