package sqlite

import (
	"context"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
)

type journalRepo struct {
	q queryer
}

const journalColumns = `id, user_tag, content, mood, prompt,
	companion_response, created_at, updated_at`

func (r *journalRepo) CreateEntry(ctx context.Context, e domain.JournalEntry) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO journal_entries (id, user_tag, content, mood, prompt,
			companion_response, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserTag, e.Content, e.Mood, e.Prompt,
		e.CompanionResponse, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	return mapConstraint(err)
}

func (r *journalRepo) GetEntryByID(ctx context.Context, id string) (domain.JournalEntry, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanJournalEntry(row)
	return e, mapNotFound(err)
}

func (r *journalRepo) ListEntries(ctx context.Context, userTag string, limit, skip int) ([]domain.JournalEntry, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE user_tag = ?`, userTag).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE user_tag = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, userTag, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *journalRepo) GetEntrySince(ctx context.Context, userTag string, since time.Time) (domain.JournalEntry, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries
		 WHERE user_tag = ? AND created_at >= ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, userTag, since.UTC())
	e, err := scanJournalEntry(row)
	return e, mapNotFound(err)
}

func (r *journalRepo) SetCompanionResponse(ctx context.Context, id, response string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE journal_entries SET companion_response = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, response, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *journalRepo) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanJournalEntry(row rowScanner) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(&e.ID, &e.UserTag, &e.Content, &e.Mood, &e.Prompt,
		&e.CompanionResponse, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return e, nil
}
