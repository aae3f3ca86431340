package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/athena-forum/athena/internal/athena/ai"
	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/idx"
	"github.com/athena-forum/athena/pkg/slogx"
)

var (
	// ErrContentRequired reports empty content on a post, comment, or entry.
	ErrContentRequired = errors.New("content_required")

	// ErrContentTooLong reports content over the per-surface limit.
	ErrContentTooLong = errors.New("content_too_long")

	// ErrInvalidPostType reports a post type other than vent or flex.
	ErrInvalidPostType = errors.New("invalid_post_type")

	// ErrInvalidTag reports a tag outside the post type's curated list.
	ErrInvalidTag = errors.New("invalid_tag")

	// ErrNotOwner reports a mutation by someone other than the author.
	ErrNotOwner = errors.New("not_owner")

	// ErrInvalidReaction reports an unknown reaction kind.
	ErrInvalidReaction = errors.New("invalid_reaction")
)

// Content limits per surface.
const (
	MaxPostLen    = 5000
	MaxCommentLen = 1000

	companionTimeout = 60 * time.Second
)

// PostService owns the shared feed: posts, reactions, comments. Creation
// moderates synchronously, advances the author's streak in the same request,
// and kicks off companion generation in the background.
type PostService struct {
	Store  store.Store
	AI     *ai.Client
	Streak *StreakService
}

// CreatePostResult carries the stored post plus any streak milestone the
// creation landed on.
type CreatePostResult struct {
	Post      domain.Post
	Milestone int
}

func (s *PostService) CreatePost(ctx context.Context, authorTag, content, postType string, tags []string) (CreatePostResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return CreatePostResult{}, ErrContentRequired
	}
	if len(content) > MaxPostLen {
		return CreatePostResult{}, ErrContentTooLong
	}
	if postType != domain.PostTypeVent && postType != domain.PostTypeFlex {
		return CreatePostResult{}, ErrInvalidPostType
	}
	if err := validateTags(postType, tags); err != nil {
		return CreatePostResult{}, err
	}

	now := time.Now().UTC()
	post := domain.Post{
		ID:                idx.New().String(),
		AuthorTag:         authorTag,
		Content:           content,
		PostType:          postType,
		Tags:              tags,
		Moderation:        s.AI.Moderate(ctx, content),
		CompanionThinking: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Store.Posts().CreatePost(ctx, post); err != nil {
		return CreatePostResult{}, fmt.Errorf("create post: %w", err)
	}

	advance, err := s.Streak.Advance(ctx, authorTag, now)
	if err != nil {
		return CreatePostResult{}, fmt.Errorf("advance streak: %w", err)
	}

	go s.generateCompanion(slogx.FromContext(ctx), post)

	return CreatePostResult{Post: post, Milestone: advance.Milestone}, nil
}

// validateTags checks every tag against the post type's curated list.
func validateTags(postType string, tags []string) error {
	allowed := domain.VentTags
	if postType == domain.PostTypeFlex {
		allowed = domain.FlexTags
	}
	for _, tag := range tags {
		found := false
		for _, a := range allowed {
			if tag == a {
				found = true
				break
			}
		}
		if !found {
			return ErrInvalidTag
		}
	}
	return nil
}

// generateCompanion runs outside the request. The AI client degrades to a
// canned reply on failure, so the thinking flag always clears unless the
// store write itself fails.
func (s *PostService) generateCompanion(logger *slog.Logger, post domain.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), companionTimeout)
	defer cancel()

	reply := s.AI.CompanionResponse(ctx, post.Content, post.Tags, post.PostType)
	if err := s.Store.Posts().SetCompanionResponse(ctx, post.ID, reply); err != nil {
		logger.Warn("companion write-back failed", "post_id", post.ID, "error", err)
	}
}

// FeedPage is one page of the feed.
type FeedPage struct {
	Posts   []domain.Post
	Total   int
	HasMore bool
}

func (s *PostService) ListPosts(ctx context.Context, f store.PostFilter) (FeedPage, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Skip < 0 {
		f.Skip = 0
	}

	posts, total, err := s.Store.Posts().ListPosts(ctx, f)
	if err != nil {
		return FeedPage{}, fmt.Errorf("list posts: %w", err)
	}
	return FeedPage{
		Posts:   posts,
		Total:   total,
		HasMore: f.Skip+len(posts) < total,
	}, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (domain.Post, error) {
	return s.Store.Posts().GetPostByID(ctx, id)
}

func (s *PostService) ListPostsByAuthor(ctx context.Context, authorTag string, limit int) ([]domain.Post, error) {
	return s.Store.Posts().ListPostsByAuthor(ctx, authorTag, limit)
}

// EditPost replaces content and tags. Author only; the new content is
// re-moderated synchronously.
func (s *PostService) EditPost(ctx context.Context, id, authorTag, content string, tags []string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, ErrContentRequired
	}
	if len(content) > MaxPostLen {
		return domain.Post{}, ErrContentTooLong
	}

	post, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	if post.AuthorTag != authorTag {
		return domain.Post{}, ErrNotOwner
	}
	if err := validateTags(post.PostType, tags); err != nil {
		return domain.Post{}, err
	}

	mod := s.AI.Moderate(ctx, content)
	if err := s.Store.Posts().UpdatePostContent(ctx, id, content, tags, mod); err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	return s.Store.Posts().GetPostByID(ctx, id)
}

func (s *PostService) DeletePost(ctx context.Context, id, authorTag string) error {
	post, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorTag != authorTag {
		return ErrNotOwner
	}
	return s.Store.Posts().DeletePost(ctx, id)
}

// React records a reaction. Reacting twice with the same kind is a no-op.
func (s *PostService) React(ctx context.Context, postID, userTag, kind string) (domain.Post, error) {
	if kind != store.ReactionHug && kind != store.ReactionHighFive {
		return domain.Post{}, ErrInvalidReaction
	}
	if _, err := s.Store.Posts().GetPostByID(ctx, postID); err != nil {
		return domain.Post{}, err
	}
	if err := s.Store.Posts().AddReaction(ctx, postID, userTag, kind); err != nil {
		return domain.Post{}, fmt.Errorf("add reaction: %w", err)
	}
	return s.Store.Posts().GetPostByID(ctx, postID)
}

// Unreact removes a reaction if present.
func (s *PostService) Unreact(ctx context.Context, postID, userTag, kind string) (domain.Post, error) {
	if kind != store.ReactionHug && kind != store.ReactionHighFive {
		return domain.Post{}, ErrInvalidReaction
	}
	if err := s.Store.Posts().RemoveReaction(ctx, postID, userTag, kind); err != nil {
		return domain.Post{}, fmt.Errorf("remove reaction: %w", err)
	}
	return s.Store.Posts().GetPostByID(ctx, postID)
}

// AddComment appends a moderated comment to a post.
func (s *PostService) AddComment(ctx context.Context, postID, authorTag, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, ErrContentRequired
	}
	if len(content) > MaxCommentLen {
		return domain.Post{}, ErrContentTooLong
	}
	if _, err := s.Store.Posts().GetPostByID(ctx, postID); err != nil {
		return domain.Post{}, err
	}

	comment := domain.Comment{
		ID:         idx.New().String(),
		AuthorTag:  authorTag,
		Content:    content,
		Moderation: s.AI.Moderate(ctx, content),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Store.Posts().AddComment(ctx, postID, comment); err != nil {
		return domain.Post{}, fmt.Errorf("add comment: %w", err)
	}
	return s.Store.Posts().GetPostByID(ctx, postID)
}

func (s *PostService) LikeComment(ctx context.Context, commentID, userTag string) error {
	return s.Store.Posts().LikeComment(ctx, commentID, userTag)
}

func (s *PostService) UnlikeComment(ctx context.Context, commentID, userTag string) error {
	return s.Store.Posts().UnlikeComment(ctx, commentID, userTag)
}
