package sqlite

import (
	"context"
	"database/sql"

	"github.com/athena-forum/athena/internal/athena/domain"
)

type blogsRepo struct {
	q queryer
}

const blogColumns = `id, title, slug, content, excerpt, cover_image,
	author_tag, author_name, tags, is_published, published_at,
	read_time, views, created_at, updated_at`

func (r *blogsRepo) CreateBlog(ctx context.Context, b domain.Blog) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO blogs (id, title, slug, content, excerpt, cover_image,
			author_tag, author_name, tags, is_published, published_at, read_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Slug, b.Content, b.Excerpt, b.CoverImage,
		b.AuthorTag, b.AuthorName, joinTags(b.Tags), b.IsPublished,
		mapOptionalTime(b.PublishedAt), b.ReadTime)
	return mapConstraint(err)
}

func (r *blogsRepo) GetBlogBySlug(ctx context.Context, slug string) (domain.Blog, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE slug = ?`, slug)
	b, err := scanBlog(row)
	return b, mapNotFound(err)
}

func (r *blogsRepo) GetBlogByID(ctx context.Context, id string) (domain.Blog, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE id = ?`, id)
	b, err := scanBlog(row)
	return b, mapNotFound(err)
}

func (r *blogsRepo) ListPublished(ctx context.Context) ([]domain.Blog, error) {
	return r.list(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE is_published = 1
		 ORDER BY published_at DESC, id DESC`)
}

func (r *blogsRepo) ListAll(ctx context.Context) ([]domain.Blog, error) {
	return r.list(ctx,
		`SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC, id DESC`)
}

func (r *blogsRepo) UpdateBlog(ctx context.Context, b domain.Blog) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE blogs SET title = ?, slug = ?, content = ?, excerpt = ?,
			cover_image = ?, tags = ?, is_published = ?, published_at = ?,
			read_time = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		b.Title, b.Slug, b.Content, b.Excerpt, b.CoverImage, joinTags(b.Tags),
		b.IsPublished, mapOptionalTime(b.PublishedAt), b.ReadTime, b.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *blogsRepo) IncrementViews(ctx context.Context, slug string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE blogs SET views = views + 1 WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *blogsRepo) DeleteBlog(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *blogsRepo) list(ctx context.Context, query string) ([]domain.Blog, error) {
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []domain.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func scanBlog(row rowScanner) (domain.Blog, error) {
	var (
		b           domain.Blog
		tags        string
		publishedAt sql.NullTime
	)
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.Excerpt, &b.CoverImage,
		&b.AuthorTag, &b.AuthorName, &tags, &b.IsPublished, &publishedAt,
		&b.ReadTime, &b.Views, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Blog{}, err
	}
	b.Tags = splitTags(tags)
	b.PublishedAt = mapNullTimePtr(publishedAt)
	return b, nil
}
