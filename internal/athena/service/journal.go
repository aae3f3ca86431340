package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/athena-forum/athena/internal/athena/ai"
	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/idx"
	"github.com/athena-forum/athena/pkg/slogx"
)

// ErrInvalidMood reports a mood outside the 1-5 scale.
var ErrInvalidMood = errors.New("invalid_mood")

// MaxJournalLen bounds journal entry content.
const MaxJournalLen = 10000

// JournalService owns private journal entries. Entries are visible only to
// their author; writing one counts as streak activity.
type JournalService struct {
	Store  store.Store
	AI     *ai.Client
	Streak *StreakService
}

// CreateEntryResult carries the stored entry plus any streak milestone.
type CreateEntryResult struct {
	Entry     domain.JournalEntry
	Milestone int
}

// CreateEntry stores a journal entry and requests a reflective companion
// response in the background. Mood is optional (0 means unspecified).
func (s *JournalService) CreateEntry(ctx context.Context, userTag, content, prompt string, mood int) (CreateEntryResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return CreateEntryResult{}, ErrContentRequired
	}
	if len(content) > MaxJournalLen {
		return CreateEntryResult{}, ErrContentTooLong
	}
	if mood != 0 && (mood < domain.MoodMin || mood > domain.MoodMax) {
		return CreateEntryResult{}, ErrInvalidMood
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		ID:        idx.New().String(),
		UserTag:   userTag,
		Content:   content,
		Mood:      mood,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Journal().CreateEntry(ctx, entry); err != nil {
		return CreateEntryResult{}, fmt.Errorf("create journal entry: %w", err)
	}

	advance, err := s.Streak.Advance(ctx, userTag, now)
	if err != nil {
		return CreateEntryResult{}, fmt.Errorf("advance streak: %w", err)
	}

	go s.generateReflection(slogx.FromContext(ctx), entry)

	return CreateEntryResult{Entry: entry, Milestone: advance.Milestone}, nil
}

func (s *JournalService) generateReflection(logger *slog.Logger, entry domain.JournalEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), companionTimeout)
	defer cancel()

	reply := s.AI.JournalResponse(ctx, entry.Content)
	if err := s.Store.Journal().SetCompanionResponse(ctx, entry.ID, reply); err != nil {
		logger.Warn("journal reflection write-back failed", "entry_id", entry.ID, "error", err)
	}
}

// JournalPage is one page of a user's journal, with the extras the journal
// screen needs: whether today already has an entry and a suggested prompt.
type JournalPage struct {
	Entries         []domain.JournalEntry
	Total           int
	HasMore         bool
	HasEntryToday   bool
	SuggestedPrompt string
}

func (s *JournalService) ListEntries(ctx context.Context, userTag string, limit, skip int) (JournalPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	entries, total, err := s.Store.Journal().ListEntries(ctx, userTag, limit, skip)
	if err != nil {
		return JournalPage{}, fmt.Errorf("list journal entries: %w", err)
	}

	page := JournalPage{
		Entries:         entries,
		Total:           total,
		HasMore:         skip+len(entries) < total,
		SuggestedPrompt: domain.JournalPrompts[rand.IntN(len(domain.JournalPrompts))],
	}

	_, err = s.Store.Journal().GetEntrySince(ctx, userTag, utcDay(time.Now()))
	switch {
	case err == nil:
		page.HasEntryToday = true
	case errors.Is(err, store.ErrNotFound):
	default:
		return JournalPage{}, fmt.Errorf("check today's entry: %w", err)
	}
	return page, nil
}

// GetEntry returns a single entry, owner only.
func (s *JournalService) GetEntry(ctx context.Context, id, userTag string) (domain.JournalEntry, error) {
	entry, err := s.Store.Journal().GetEntryByID(ctx, id)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if entry.UserTag != userTag {
		return domain.JournalEntry{}, ErrNotOwner
	}
	return entry, nil
}

// DeleteEntry removes an entry, owner only.
func (s *JournalService) DeleteEntry(ctx context.Context, id, userTag string) error {
	entry, err := s.Store.Journal().GetEntryByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserTag != userTag {
		return ErrNotOwner
	}
	return s.Store.Journal().DeleteEntry(ctx, id)
}
