package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/idx"
)

// ErrTitleRequired reports a blog without a title.
var ErrTitleRequired = errors.New("title_required")

const readWordsPerMinute = 200

// BlogService owns long-form articles. Writes are admin-only (enforced at
// the HTTP layer); reads are public.
type BlogService struct {
	Store store.Store
}

// BlogInput is the mutable surface of an article.
type BlogInput struct {
	Title       string
	Content     string
	Excerpt     string
	CoverImage  string
	Tags        []string
	IsPublished bool
}

func (s *BlogService) Create(ctx context.Context, authorTag, authorName string, in BlogInput) (domain.Blog, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Blog{}, ErrTitleRequired
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.Blog{}, ErrContentRequired
	}

	now := time.Now().UTC()
	blog := domain.Blog{
		ID:          idx.New().String(),
		Title:       in.Title,
		Slug:        slugify(in.Title),
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		CoverImage:  in.CoverImage,
		AuthorTag:   authorTag,
		AuthorName:  authorName,
		Tags:        in.Tags,
		IsPublished: in.IsPublished,
		ReadTime:    readTime(in.Content),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsPublished {
		blog.PublishedAt = &now
	}

	if err := s.Store.Blogs().CreateBlog(ctx, blog); err != nil {
		return domain.Blog{}, fmt.Errorf("create blog: %w", err)
	}
	return blog, nil
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogInput) (domain.Blog, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Blog{}, ErrTitleRequired
	}

	existing, err := s.Store.Blogs().GetBlogByID(ctx, id)
	if err != nil {
		return domain.Blog{}, err
	}

	updated := existing
	updated.Title = in.Title
	updated.Slug = slugify(in.Title)
	updated.Content = in.Content
	updated.Excerpt = in.Excerpt
	updated.CoverImage = in.CoverImage
	updated.Tags = in.Tags
	updated.ReadTime = readTime(in.Content)

	// Publishing for the first time stamps publishedAt; unpublishing keeps it.
	if in.IsPublished && !existing.IsPublished {
		now := time.Now().UTC()
		updated.PublishedAt = &now
	}
	updated.IsPublished = in.IsPublished

	if err := s.Store.Blogs().UpdateBlog(ctx, updated); err != nil {
		return domain.Blog{}, fmt.Errorf("update blog: %w", err)
	}
	return updated, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	return s.Store.Blogs().DeleteBlog(ctx, id)
}

// ListPublished returns published articles for the public site.
func (s *BlogService) ListPublished(ctx context.Context) ([]domain.Blog, error) {
	return s.Store.Blogs().ListPublished(ctx)
}

// ListAll returns every article, for the admin screen.
func (s *BlogService) ListAll(ctx context.Context) ([]domain.Blog, error) {
	return s.Store.Blogs().ListAll(ctx)
}

// GetBySlug returns one article and bumps its view counter. The increment is
// a single UPDATE so concurrent reads never lose a count.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (domain.Blog, error) {
	blog, err := s.Store.Blogs().GetBlogBySlug(ctx, slug)
	if err != nil {
		return domain.Blog{}, err
	}
	if err := s.Store.Blogs().IncrementViews(ctx, slug); err != nil {
		return domain.Blog{}, fmt.Errorf("increment views: %w", err)
	}
	blog.Views++
	return blog, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases a title and collapses everything outside [a-z0-9] into
// single hyphens.
func slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// readTime estimates reading minutes at 200 words per minute, minimum 1.
func readTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / readWordsPerMinute
	if words%readWordsPerMinute != 0 || minutes == 0 {
		minutes++
	}
	return minutes
}
