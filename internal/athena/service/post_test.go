package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/athena-forum/athena/internal/athena/ai"
	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/stretchr/testify/require"
)

// newPostService wires a post service against a fresh store with a disabled
// AI client, so moderation passes everything and the companion uses its
// canned fallback.
func newPostService(t *testing.T) (*PostService, store.Store) {
	t.Helper()
	st := newTestStore(t)
	return &PostService{
		Store:  st,
		AI:     ai.NewClient(ai.Config{}),
		Streak: &StreakService{Store: st},
	}, st
}

func TestCreatePostValidation(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")

	_, err := svc.CreatePost(ctx, "wanderer#4821", "   ", domain.PostTypeVent, nil)
	require.ErrorIs(t, err, ErrContentRequired)

	_, err = svc.CreatePost(ctx, "wanderer#4821", strings.Repeat("x", MaxPostLen+1), domain.PostTypeVent, nil)
	require.ErrorIs(t, err, ErrContentTooLong)

	_, err = svc.CreatePost(ctx, "wanderer#4821", "hello", "rant", nil)
	require.ErrorIs(t, err, ErrInvalidPostType)

	// Tags must come from the post type's curated list.
	_, err = svc.CreatePost(ctx, "wanderer#4821", "hello", domain.PostTypeVent, []string{"Yolo"})
	require.ErrorIs(t, err, ErrInvalidTag)

	// "Win" is a flex tag, not a vent tag.
	_, err = svc.CreatePost(ctx, "wanderer#4821", "hello", domain.PostTypeVent, []string{"Win"})
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestEditPostRejectsUnknownTag(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "long week", domain.PostTypeVent, []string{"Work"})
	require.NoError(t, err)

	_, err = svc.EditPost(ctx, res.Post.ID, "wanderer#4821", "long week, really", []string{"Whatever"})
	require.ErrorIs(t, err, ErrInvalidTag)

	// Valid vent tags still pass.
	updated, err := svc.EditPost(ctx, res.Post.ID, "wanderer#4821", "long week, really", []string{"Work", "Stress"})
	require.NoError(t, err)
	require.Equal(t, []string{"Work", "Stress"}, updated.Tags)
}

func TestCreatePostAdvancesStreakAndGeneratesCompanion(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "today was rough", domain.PostTypeVent, []string{"Stress"})
	require.NoError(t, err)
	require.True(t, res.Post.CompanionThinking)
	require.Equal(t, []string{"Stress"}, res.Post.Tags)

	user, err := st.Users().GetUserByTag(ctx, "wanderer#4821")
	require.NoError(t, err)
	require.Equal(t, 1, user.Streak.CurrentStreak)

	// The background write-back clears the thinking flag.
	require.Eventually(t, func() bool {
		p, err := st.Posts().GetPostByID(ctx, res.Post.ID)
		return err == nil && !p.CompanionThinking && p.CompanionResponse != ""
	}, 2*time.Second, 10*time.Millisecond)

	// A second post on the same day does not advance the streak again.
	res2, err := svc.CreatePost(ctx, "wanderer#4821", "also this", domain.PostTypeFlex, nil)
	require.NoError(t, err)
	require.Zero(t, res2.Milestone)

	user, err = st.Users().GetUserByTag(ctx, "wanderer#4821")
	require.NoError(t, err)
	require.Equal(t, 1, user.Streak.CurrentStreak)
}

func TestListPostsFilterAndPaging(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePost(ctx, "wanderer#4821", "vent body", domain.PostTypeVent, []string{"Anxiety"})
		require.NoError(t, err)
	}
	_, err := svc.CreatePost(ctx, "wanderer#4821", "flex body", domain.PostTypeFlex, []string{"Win"})
	require.NoError(t, err)

	page, err := svc.ListPosts(ctx, store.PostFilter{})
	require.NoError(t, err)
	require.Len(t, page.Posts, 4)
	require.Equal(t, 4, page.Total)
	require.False(t, page.HasMore)

	page, err = svc.ListPosts(ctx, store.PostFilter{PostType: domain.PostTypeVent})
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)

	page, err = svc.ListPosts(ctx, store.PostFilter{Tag: "Win"})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	require.Equal(t, "flex body", page.Posts[0].Content)

	page, err = svc.ListPosts(ctx, store.PostFilter{Tag: "All", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.Equal(t, 4, page.Total)
	require.True(t, page.HasMore)

	page, err = svc.ListPosts(ctx, store.PostFilter{Limit: 2, Skip: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.False(t, page.HasMore)
}

func TestEditPostOwnership(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")
	seedUser(t, st, "stranger", "1111")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "original", domain.PostTypeVent, nil)
	require.NoError(t, err)

	_, err = svc.EditPost(ctx, res.Post.ID, "stranger#1111", "hijacked", nil)
	require.ErrorIs(t, err, ErrNotOwner)

	edited, err := svc.EditPost(ctx, res.Post.ID, "wanderer#4821", "revised", []string{"Work"})
	require.NoError(t, err)
	require.Equal(t, "revised", edited.Content)
	require.Equal(t, []string{"Work"}, edited.Tags)
}

func TestDeletePostOwnership(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")
	seedUser(t, st, "stranger", "1111")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "to delete", domain.PostTypeVent, nil)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeletePost(ctx, res.Post.ID, "stranger#1111"), ErrNotOwner)
	require.NoError(t, svc.DeletePost(ctx, res.Post.ID, "wanderer#4821"))

	_, err = svc.GetPost(ctx, res.Post.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReactionsAreIdempotent(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")
	seedUser(t, st, "stranger", "1111")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "hug me", domain.PostTypeVent, nil)
	require.NoError(t, err)

	_, err = svc.React(ctx, res.Post.ID, "stranger#1111", "wave")
	require.ErrorIs(t, err, ErrInvalidReaction)

	post, err := svc.React(ctx, res.Post.ID, "stranger#1111", store.ReactionHug)
	require.NoError(t, err)
	require.Equal(t, 1, post.Reactions.Hugs)
	require.Equal(t, []string{"stranger#1111"}, post.Reactions.HuggedBy)

	// Repeat hug does not double count.
	post, err = svc.React(ctx, res.Post.ID, "stranger#1111", store.ReactionHug)
	require.NoError(t, err)
	require.Equal(t, 1, post.Reactions.Hugs)

	// A different kind from the same user counts separately.
	post, err = svc.React(ctx, res.Post.ID, "stranger#1111", store.ReactionHighFive)
	require.NoError(t, err)
	require.Equal(t, 1, post.Reactions.Hugs)
	require.Equal(t, 1, post.Reactions.HighFives)

	post, err = svc.Unreact(ctx, res.Post.ID, "stranger#1111", store.ReactionHug)
	require.NoError(t, err)
	require.Zero(t, post.Reactions.Hugs)
	require.Equal(t, 1, post.Reactions.HighFives)

	// Removing an absent reaction is a no-op.
	post, err = svc.Unreact(ctx, res.Post.ID, "stranger#1111", store.ReactionHug)
	require.NoError(t, err)
	require.Zero(t, post.Reactions.Hugs)
}

func TestCommentsAndLikes(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")
	seedUser(t, st, "stranger", "1111")

	res, err := svc.CreatePost(ctx, "wanderer#4821", "post body", domain.PostTypeVent, nil)
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, res.Post.ID, "stranger#1111", strings.Repeat("x", MaxCommentLen+1))
	require.ErrorIs(t, err, ErrContentTooLong)

	post, err := svc.AddComment(ctx, res.Post.ID, "stranger#1111", "hang in there")
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	require.Equal(t, "hang in there", post.Comments[0].Content)

	commentID := post.Comments[0].ID
	require.NoError(t, svc.LikeComment(ctx, commentID, "wanderer#4821"))
	require.NoError(t, svc.LikeComment(ctx, commentID, "wanderer#4821"))

	post, err = svc.GetPost(ctx, res.Post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, post.Comments[0].Likes)
	require.Equal(t, []string{"wanderer#4821"}, post.Comments[0].LikedBy)

	require.NoError(t, svc.UnlikeComment(ctx, commentID, "wanderer#4821"))
	post, err = svc.GetPost(ctx, res.Post.ID)
	require.NoError(t, err)
	require.Zero(t, post.Comments[0].Likes)
}

func TestCommentOnMissingPost(t *testing.T) {
	svc, st := newPostService(t)
	ctx := context.Background()
	seedUser(t, st, "wanderer", "4821")

	_, err := svc.AddComment(ctx, "no-such-post", "wanderer#4821", "hello")
	require.ErrorIs(t, err, store.ErrNotFound)
}
