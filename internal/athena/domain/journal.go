package domain

import "time"

type JournalEntry struct {
	ID                string    `json:"id"`
	UserTag           string    `json:"userTag"`
	Content           string    `json:"content"`
	Mood              int       `json:"mood"` // 1-5, 0 means unspecified
	Prompt            string    `json:"prompt,omitempty"`
	CompanionResponse string    `json:"companionResponse,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// JournalPrompts are suggested writing prompts, one offered at random per
// journal page load.
var JournalPrompts = []string{
	"What's one thing you're grateful for today?",
	"How did you take care of yourself today?",
	"What's something that made you smile recently?",
	"What's a challenge you overcame this week?",
	"Describe a moment of peace you experienced.",
	"What would you tell your past self?",
	"What are you looking forward to?",
	"What's something you learned about yourself?",
	"Describe a kind act you witnessed or did.",
	"What's one thing you want to let go of?",
}
