package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/idx"
)

// MoodService owns daily mood check-ins. At most one entry exists per user
// per UTC day; checking in again the same day updates it in place. Only the
// first check-in of a day advances the streak.
type MoodService struct {
	Store  store.Store
	Streak *StreakService
}

// CheckInResult carries the stored entry plus streak details.
type CheckInResult struct {
	Entry     domain.MoodEntry
	Updated   bool // true when an existing same-day entry was replaced
	Milestone int
}

func (s *MoodService) CheckIn(ctx context.Context, userTag string, mood int, note string) (CheckInResult, error) {
	if mood < domain.MoodMin || mood > domain.MoodMax {
		return CheckInResult{}, ErrInvalidMood
	}

	now := time.Now().UTC()
	var result CheckInResult

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Moods().GetEntrySince(ctx, userTag, utcDay(now))
		switch {
		case err == nil:
			if err := tx.Moods().UpdateEntry(ctx, existing.ID, mood, note); err != nil {
				return err
			}
			existing.Mood = mood
			existing.Note = note
			result = CheckInResult{Entry: existing, Updated: true}
			return nil

		case errors.Is(err, store.ErrNotFound):
			entry := domain.MoodEntry{
				ID:        idx.New().String(),
				UserTag:   userTag,
				Mood:      mood,
				Note:      note,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Moods().CreateEntry(ctx, entry); err != nil {
				return err
			}
			result = CheckInResult{Entry: entry}
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return CheckInResult{}, fmt.Errorf("mood check-in: %w", err)
	}

	if !result.Updated {
		advance, err := s.Streak.Advance(ctx, userTag, now)
		if err != nil {
			return CheckInResult{}, fmt.Errorf("advance streak: %w", err)
		}
		result.Milestone = advance.Milestone
	}
	return result, nil
}

// MoodHistory is the mood screen payload.
type MoodHistory struct {
	Entries        []domain.MoodEntry
	CheckedInToday bool
	Today          *domain.MoodEntry
}

// History returns check-ins over the trailing window of days.
func (s *MoodService) History(ctx context.Context, userTag string, days int) (MoodHistory, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	now := time.Now().UTC()
	since := utcDay(now).AddDate(0, 0, -(days - 1))

	entries, err := s.Store.Moods().ListSince(ctx, userTag, since)
	if err != nil {
		return MoodHistory{}, fmt.Errorf("mood history: %w", err)
	}

	history := MoodHistory{Entries: entries}
	for i := range entries {
		if !entries[i].CreatedAt.Before(utcDay(now)) {
			history.CheckedInToday = true
			history.Today = &entries[i]
			break
		}
	}
	return history, nil
}
