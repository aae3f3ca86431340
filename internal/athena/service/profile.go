package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
)

// Profile page aggregation limits.
const (
	profilePostLimit    = 50
	profileJournalLimit = 30
	profileMoodDays     = 30
)

// ProfileService assembles the profile page: the user's own posts, recent
// mood check-ins, journal entries, and summary stats in one read.
type ProfileService struct {
	Store store.Store
}

// ProfileStats summarizes a user's activity. AverageMood is nil until the
// first check-in, then rounded to one decimal.
type ProfileStats struct {
	TotalPosts          int      `json:"totalPosts"`
	TotalHugs           int      `json:"totalHugs"`
	TotalHighFives      int      `json:"totalHighFives"`
	TotalJournalEntries int      `json:"totalJournalEntries"`
	TotalMoodCheckins   int      `json:"totalMoodCheckins"`
	AverageMood         *float64 `json:"averageMood"`
	CurrentStreak       int      `json:"currentStreak"`
	LongestStreak       int      `json:"longestStreak"`
}

// Profile is the aggregate payload for the profile page.
type Profile struct {
	User           map[string]any        `json:"user"`
	Posts          []domain.Post         `json:"posts"`
	MoodEntries    []domain.MoodEntry    `json:"moodEntries"`
	JournalEntries []domain.JournalEntry `json:"journalEntries"`
	Stats          ProfileStats          `json:"stats"`
}

// Get loads the profile for the given user. Everything is scoped to the
// user's own content; journal entries stay private to the owner.
func (s *ProfileService) Get(ctx context.Context, fullTag string) (Profile, error) {
	user, err := s.Store.Users().GetUserByTag(ctx, fullTag)
	if err != nil {
		return Profile{}, fmt.Errorf("profile user: %w", err)
	}

	now := time.Now().UTC()

	posts, err := s.Store.Posts().ListPostsByAuthor(ctx, fullTag, profilePostLimit)
	if err != nil {
		return Profile{}, fmt.Errorf("profile posts: %w", err)
	}

	moodSince := utcDay(now).AddDate(0, 0, -(profileMoodDays - 1))
	moods, err := s.Store.Moods().ListSince(ctx, fullTag, moodSince)
	if err != nil {
		return Profile{}, fmt.Errorf("profile moods: %w", err)
	}

	entries, totalEntries, err := s.Store.Journal().ListEntries(ctx, fullTag, profileJournalLimit, 0)
	if err != nil {
		return Profile{}, fmt.Errorf("profile journal: %w", err)
	}

	stats := ProfileStats{
		TotalPosts:          len(posts),
		TotalJournalEntries: totalEntries,
		TotalMoodCheckins:   len(moods),
		CurrentStreak:       user.Streak.CurrentStreak,
		LongestStreak:       user.Streak.LongestStreak,
	}
	for i := range posts {
		stats.TotalHugs += posts[i].Reactions.Hugs
		stats.TotalHighFives += posts[i].Reactions.HighFives
	}
	if len(moods) > 0 {
		sum := 0
		for i := range moods {
			sum += moods[i].Mood
		}
		avg := math.Round(10*float64(sum)/float64(len(moods))) / 10
		stats.AverageMood = &avg
	}

	return Profile{
		User: map[string]any{
			"fullTag":   user.FullTag,
			"username":  user.Username,
			"role":      user.Role,
			"createdAt": user.CreatedAt,
		},
		Posts:          posts,
		MoodEntries:    moods,
		JournalEntries: entries,
		Stats:          stats,
	}, nil
}
