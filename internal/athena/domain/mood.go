package domain

import "time"

// Mood scale bounds for daily check-ins.
const (
	MoodMin = 1
	MoodMax = 5
)

// MoodEntry is a daily mood check-in. At most one entry exists per user per
// UTC day; a repeat check-in replaces the earlier one.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserTag   string    `json:"userTag"`
	Mood      int       `json:"mood"` // 1 struggling .. 5 great
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MoodLabels maps the 1-5 scale onto display labels.
var MoodLabels = map[int]string{
	1: "Struggling",
	2: "Low",
	3: "Okay",
	4: "Good",
	5: "Great",
}
