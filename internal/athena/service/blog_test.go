package service

import (
	"context"
	"strings"
	"testing"

	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/stretchr/testify/require"
)

func newBlogService(t *testing.T) *BlogService {
	t.Helper()
	return &BlogService{Store: newTestStore(t)}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":                  "hello-world",
		"  Mindfulness & You!  ":       "mindfulness-you",
		"5 Ways to Cope":               "5-ways-to-cope",
		"---Already--Hyphenated---":    "already-hyphenated",
		"UPPER case TITLE":             "upper-case-title",
	}
	for title, want := range cases {
		require.Equal(t, want, slugify(title), "title %q", title)
	}
}

func TestReadTime(t *testing.T) {
	require.Equal(t, 1, readTime("short"))
	require.Equal(t, 1, readTime(strings.Repeat("word ", 200)))
	require.Equal(t, 2, readTime(strings.Repeat("word ", 201)))
	require.Equal(t, 3, readTime(strings.Repeat("word ", 450)))
}

func TestBlogCreateAndSlugConflict(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	blog, err := svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title:       "Coping with Anxiety",
		Content:     strings.Repeat("calm ", 300),
		Excerpt:     "Practical steps.",
		Tags:        []string{"anxiety", "guides"},
		IsPublished: true,
	})
	require.NoError(t, err)
	require.Equal(t, "coping-with-anxiety", blog.Slug)
	require.Equal(t, 2, blog.ReadTime)
	require.NotNil(t, blog.PublishedAt)

	_, err = svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title:   "Coping With Anxiety",
		Content: "same slug",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestBlogPublishedVisibility(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title: "Draft Piece", Content: "wip", IsPublished: false,
	})
	require.NoError(t, err)
	published, err := svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title: "Live Piece", Content: "done", IsPublished: true,
	})
	require.NoError(t, err)

	public, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, published.ID, public[0].ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestBlogGetBySlugCountsViews(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title: "Viewed Piece", Content: "body", IsPublished: true,
	})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		blog, err := svc.GetBySlug(ctx, created.Slug)
		require.NoError(t, err)
		require.Equal(t, i, blog.Views)
	}

	_, err = svc.GetBySlug(ctx, "no-such-slug")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestBlogUpdatePublishStamping(t *testing.T) {
	svc := newBlogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin#0001", "Athena Team", BlogInput{
		Title: "Evolving Piece", Content: "v1", IsPublished: false,
	})
	require.NoError(t, err)
	require.Nil(t, created.PublishedAt)

	// First publish stamps publishedAt.
	updated, err := svc.Update(ctx, created.ID, BlogInput{
		Title: "Evolving Piece", Content: "v2", IsPublished: true,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	stamp := *updated.PublishedAt

	// Unpublishing keeps the original stamp for a later re-publish.
	updated, err = svc.Update(ctx, created.ID, BlogInput{
		Title: "Evolving Piece", Content: "v3", IsPublished: false,
	})
	require.NoError(t, err)
	require.False(t, updated.IsPublished)
	require.Equal(t, stamp, *updated.PublishedAt)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetBySlug(ctx, "evolving-piece")
	require.ErrorIs(t, err, store.ErrNotFound)
}
