package domain

import "time"

// Post types. Vents share struggles, flexes celebrate wins; the companion
// responds in a different register for each.
const (
	PostTypeVent = "vent"
	PostTypeFlex = "flex"
)

// Moderation severities.
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ModerationResult is the structured verdict from the moderation pass.
// Blurred content stays on the feed but is hidden behind a click-through.
type ModerationResult struct {
	IsBlurred bool   `json:"isBlurred"`
	Reason    string `json:"reason,omitempty"`
	Severity  string `json:"severity"`
}

type Reactions struct {
	Hugs        int      `json:"hugs"`
	HuggedBy    []string `json:"huggedBy"`
	HighFives   int      `json:"highFives"`
	HighFivedBy []string `json:"highFivedBy"`
}

type Comment struct {
	ID         string           `json:"id"`
	AuthorTag  string           `json:"authorTag"`
	Content    string           `json:"content"`
	Likes      int              `json:"likes"`
	LikedBy    []string         `json:"likedBy"`
	Moderation ModerationResult `json:"moderation"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type Post struct {
	ID                string           `json:"id"`
	AuthorTag         string           `json:"authorTag"`
	Content           string           `json:"content"`
	PostType          string           `json:"postType"`
	Tags              []string         `json:"tags"`
	Reactions         Reactions        `json:"reactions"`
	Moderation        ModerationResult `json:"moderation"`
	CompanionResponse string           `json:"companionResponse,omitempty"`
	CompanionThinking bool             `json:"companionThinking"`
	Comments          []Comment        `json:"comments"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// Curated tag lists, per post type.
var (
	VentTags = []string{
		"Anxiety", "Depression", "Stress", "Loneliness", "Relationship",
		"Work", "School", "Family", "Health", "Overwhelmed",
	}
	FlexTags = []string{
		"Win", "Gratitude", "Progress", "Milestone", "Self-Care",
		"Growth", "Achievement", "Kindness", "Recovery", "Joy",
	}
)
