package service

import (
	"context"
	"math"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
)

// Milestones are the streak lengths that fire a celebration, ascending.
var Milestones = []int{7, 14, 30, 60, 100, 365}

// AdvanceResult is the outcome of applying one qualifying activity.
type AdvanceResult struct {
	Streak    domain.Streak
	Changed   bool // false when the user was already active today
	Milestone int  // 0 unless this advance landed exactly on a milestone
}

// utcDay truncates t to midnight UTC. Day boundaries are UTC everywhere so a
// streak means the same thing in every time zone.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func diffDays(from, to time.Time) int {
	return int(utcDay(to).Sub(utcDay(from)) / (24 * time.Hour))
}

// AdvanceStreak applies one qualifying activity (post, mood check-in, journal
// entry) to a streak. Pure: callers persist the result themselves.
//
// A gap of zero days is a no-op, one day extends the streak, anything longer
// resets it to 1. A milestone fires only on the extend branch, and only when
// the new length lands exactly on a threshold.
func AdvanceStreak(s domain.Streak, now time.Time) AdvanceResult {
	if s.LastActiveDate == nil {
		s.CurrentStreak = 1
		if s.LongestStreak < 1 {
			s.LongestStreak = 1
		}
		ts := now
		s.LastActiveDate = &ts
		return AdvanceResult{Streak: s, Changed: true}
	}

	switch gap := diffDays(*s.LastActiveDate, now); {
	case gap <= 0:
		return AdvanceResult{Streak: s}

	case gap == 1:
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		ts := now
		s.LastActiveDate = &ts

		milestone := 0
		for _, m := range Milestones {
			if s.CurrentStreak == m {
				milestone = m
				break
			}
		}
		return AdvanceResult{Streak: s, Changed: true, Milestone: milestone}

	default:
		s.CurrentStreak = 1
		if s.LongestStreak < 1 {
			s.LongestStreak = 1
		}
		ts := now
		s.LastActiveDate = &ts
		return AdvanceResult{Streak: s, Changed: true}
	}
}

// StreakView is the display shape of a streak. A streak that lapsed (more
// than one full day inactive) displays as 0 even though the stored value is
// only recomputed on the next activity.
type StreakView struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActiveDate   *time.Time `json:"lastActiveDate,omitempty"`
	IsActive         bool       `json:"isActive"`
	DaysInactive     int        `json:"daysInactive"`
	CurrentMilestone int        `json:"currentMilestone"` // highest threshold crossed, 0 if none
	NextMilestone    int        `json:"nextMilestone"`    // 0 when past the last one
	ProgressToNext   int        `json:"progressToNext"`
}

// ViewStreak computes the read-side presentation of a streak without
// mutating it.
func ViewStreak(s domain.Streak, now time.Time) StreakView {
	v := StreakView{
		CurrentStreak:  s.CurrentStreak,
		LongestStreak:  s.LongestStreak,
		LastActiveDate: s.LastActiveDate,
	}

	if s.LastActiveDate == nil {
		v.CurrentStreak = 0
		v.NextMilestone = Milestones[0]
		return v
	}

	v.DaysInactive = diffDays(*s.LastActiveDate, now)
	if v.DaysInactive < 0 {
		v.DaysInactive = 0
	}
	v.IsActive = v.DaysInactive <= 1
	if !v.IsActive {
		v.CurrentStreak = 0
	}

	lower := 0
	for _, m := range Milestones {
		if v.CurrentStreak >= m {
			lower = m
			continue
		}
		v.CurrentMilestone = lower
		v.NextMilestone = m
		v.ProgressToNext = int(math.Round(100 * float64(v.CurrentStreak-lower) / float64(m-lower)))
		return v
	}

	v.CurrentMilestone = lower

	// Past the final milestone.
	v.ProgressToNext = 100
	return v
}

// StreakService persists streak advances. Everything that counts as activity
// funnels through Advance so the once-per-day rule lives in one place.
type StreakService struct {
	Store store.Store
}

// Advance applies a qualifying activity for the user and persists the new
// state inside a transaction. Returns the result including any milestone.
func (s *StreakService) Advance(ctx context.Context, fullTag string, now time.Time) (AdvanceResult, error) {
	var result AdvanceResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByTag(ctx, fullTag)
		if err != nil {
			return err
		}

		result = AdvanceStreak(user.Streak, now)
		if !result.Changed {
			return nil
		}
		return tx.Users().UpdateStreak(ctx, fullTag, result.Streak)
	})
	if err != nil {
		return AdvanceResult{}, err
	}
	return result, nil
}

// View returns the display state of the user's streak.
func (s *StreakService) View(ctx context.Context, fullTag string, now time.Time) (StreakView, error) {
	user, err := s.Store.Users().GetUserByTag(ctx, fullTag)
	if err != nil {
		return StreakView{}, err
	}
	return ViewStreak(user.Streak, now), nil
}
