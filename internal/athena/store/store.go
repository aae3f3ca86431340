package store

import (
	"context"
	"errors"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/go-webauthn/webauthn/webauthn"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict reports a conditional update that matched no rows, e.g. a
	// signature counter that did not advance.
	ErrConflict = errors.New("store: conditional update conflict")
)

// Reaction kinds on posts.
const (
	ReactionHug      = "hug"
	ReactionHighFive = "high_five"
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	Challenges() Challenges
	Posts() Posts
	Journal() Journal
	Moods() Moods
	Blogs() Blogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back; otherwise it
	// is committed. This is the recommended way to handle multi-step writes
	// (streak advances, reaction toggles, challenge consumption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByTag returns a user (with credentials and streak) by full tag.
	GetUserByTag(ctx context.Context, fullTag string) (domain.User, error)

	// GetUserByCredentialID returns the user owning the given credential id.
	GetUserByCredentialID(ctx context.Context, credentialID []byte) (domain.User, error)

	// CreateUser inserts a new user together with its credentials. A duplicate
	// full tag maps to ErrAlreadyExists (UNIQUE index backstop for the
	// registration race).
	CreateUser(ctx context.Context, u domain.User) error

	// TagExists reports whether a full tag is already taken.
	TagExists(ctx context.Context, fullTag string) (bool, error)

	// AddCredential registers an additional authenticator for a user.
	AddCredential(ctx context.Context, userID string, cred webauthn.Credential) error

	// UpdateCredentialSignCount persists a new signature counter, but only if
	// it is strictly greater than the stored one. Returns ErrConflict when the
	// guard fails (cloned-authenticator replay) and ErrNotFound for an unknown
	// credential.
	UpdateCredentialSignCount(ctx context.Context, credentialID []byte, newCount uint32) error

	// UpdateStreak overwrites the user's streak fields and bumps updated_at.
	UpdateStreak(ctx context.Context, fullTag string, s domain.Streak) error
}

type Challenges interface {
	// CreateChallenge stores pending WebAuthn ceremony state under a handle.
	CreateChallenge(ctx context.Context, c domain.LoginChallenge) error

	// ConsumeChallenge returns a not-yet-expired challenge and deletes it
	// before returning. The delete is authoritative; a caller that loses a
	// race for the row gets ErrNotFound, so a handle can never verify twice.
	ConsumeChallenge(ctx context.Context, handle string) (domain.LoginChallenge, error)

	// DeleteExpiredChallenges is housekeeping.
	DeleteExpiredChallenges(ctx context.Context) error
}

// PostFilter narrows feed queries.
type PostFilter struct {
	Tag      string // empty or "All" matches everything
	PostType string // "vent", "flex", or empty
	Limit    int
	Skip     int
}

type Posts interface {
	// CreatePost inserts a post with its moderation verdict.
	CreatePost(ctx context.Context, p domain.Post) error

	// GetPostByID returns a post with reactions and comments assembled.
	GetPostByID(ctx context.Context, id string) (domain.Post, error)

	// ListPosts returns a page of the feed, newest first, plus the total
	// count matching the filter.
	ListPosts(ctx context.Context, f PostFilter) ([]domain.Post, int, error)

	// ListPostsByAuthor returns a user's own posts, newest first.
	ListPostsByAuthor(ctx context.Context, authorTag string, limit int) ([]domain.Post, error)

	// UpdatePostContent replaces content, tags, and the re-moderation verdict.
	UpdatePostContent(ctx context.Context, id, content string, tags []string, mod domain.ModerationResult) error

	// SetCompanionResponse writes the generated response and clears the
	// thinking flag.
	SetCompanionResponse(ctx context.Context, id, response string) error

	// DeletePost cascades to reactions and comments.
	DeletePost(ctx context.Context, id string) error

	// AddReaction records a reaction; repeats by the same user are no-ops.
	AddReaction(ctx context.Context, postID, userTag, kind string) error

	// RemoveReaction deletes a reaction if present.
	RemoveReaction(ctx context.Context, postID, userTag, kind string) error

	// AddComment appends a comment to a post.
	AddComment(ctx context.Context, postID string, c domain.Comment) error

	// LikeComment / UnlikeComment toggle a user's like on a comment.
	LikeComment(ctx context.Context, commentID, userTag string) error
	UnlikeComment(ctx context.Context, commentID, userTag string) error
}

type Journal interface {
	// CreateEntry inserts a journal entry.
	CreateEntry(ctx context.Context, e domain.JournalEntry) error

	// GetEntryByID returns a single entry.
	GetEntryByID(ctx context.Context, id string) (domain.JournalEntry, error)

	// ListEntries returns a page of the user's entries, newest first, plus
	// the total count.
	ListEntries(ctx context.Context, userTag string, limit, skip int) ([]domain.JournalEntry, int, error)

	// GetEntrySince returns the user's most recent entry created at or after
	// the given instant, or ErrNotFound.
	GetEntrySince(ctx context.Context, userTag string, since time.Time) (domain.JournalEntry, error)

	// SetCompanionResponse writes the async companion response.
	SetCompanionResponse(ctx context.Context, id, response string) error

	// DeleteEntry removes an entry.
	DeleteEntry(ctx context.Context, id string) error
}

type Moods interface {
	// CreateEntry inserts a mood check-in.
	CreateEntry(ctx context.Context, e domain.MoodEntry) error

	// UpdateEntry replaces mood and note on an existing check-in.
	UpdateEntry(ctx context.Context, id string, mood int, note string) error

	// GetEntrySince returns the user's check-in created at or after the given
	// instant (i.e. today's entry when since is UTC midnight), or ErrNotFound.
	GetEntrySince(ctx context.Context, userTag string, since time.Time) (domain.MoodEntry, error)

	// ListSince returns check-ins at or after the given instant, newest first.
	ListSince(ctx context.Context, userTag string, since time.Time) ([]domain.MoodEntry, error)
}

type Blogs interface {
	// CreateBlog inserts an article; a duplicate slug maps to ErrAlreadyExists.
	CreateBlog(ctx context.Context, b domain.Blog) error

	// GetBlogBySlug returns an article by its slug.
	GetBlogBySlug(ctx context.Context, slug string) (domain.Blog, error)

	// GetBlogByID returns an article by id.
	GetBlogByID(ctx context.Context, id string) (domain.Blog, error)

	// ListPublished returns published articles, newest first.
	ListPublished(ctx context.Context) ([]domain.Blog, error)

	// ListAll returns every article, for admins.
	ListAll(ctx context.Context) ([]domain.Blog, error)

	// UpdateBlog replaces the mutable fields of an article.
	UpdateBlog(ctx context.Context, b domain.Blog) error

	// IncrementViews bumps the view counter atomically in the database.
	IncrementViews(ctx context.Context, slug string) error

	// DeleteBlog removes an article.
	DeleteBlog(ctx context.Context, id string) error
}
