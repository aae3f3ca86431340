package domain

import "time"

// Blog is a long-form article. Creation and editing are admin-only; reads
// are public.
type Blog struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`    // unique, derived from title
	Content     string     `json:"content"` // markdown
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	AuthorTag   string     `json:"authorTag"`
	AuthorName  string     `json:"authorName"`
	Tags        []string   `json:"tags"`
	IsPublished bool       `json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ReadTime    int        `json:"readTime"` // estimated minutes
	Views       int        `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
