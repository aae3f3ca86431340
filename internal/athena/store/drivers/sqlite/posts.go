package sqlite

import (
	"context"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
)

type postsRepo struct {
	q queryer
}

const postColumns = `id, author_tag, content, post_type, tags,
	mod_blurred, mod_reason, mod_severity,
	companion_response, companion_thinking, created_at, updated_at`

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO posts (id, author_tag, content, post_type, tags,
			mod_blurred, mod_reason, mod_severity,
			companion_response, companion_thinking, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AuthorTag, p.Content, p.PostType, joinTags(p.Tags),
		p.Moderation.IsBlurred, p.Moderation.Reason, p.Moderation.Severity,
		p.CompanionResponse, p.CompanionThinking, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return mapConstraint(err)
}

func (r *postsRepo) GetPostByID(ctx context.Context, id string) (domain.Post, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	p, err := scanPost(row)
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	if err := r.loadExtras(ctx, &p); err != nil {
		return domain.Post{}, err
	}
	return p, nil
}

func (r *postsRepo) ListPosts(ctx context.Context, f store.PostFilter) ([]domain.Post, int, error) {
	where := `WHERE 1=1`
	var args []any
	if f.PostType != "" {
		where += ` AND post_type = ?`
		args = append(args, f.PostType)
	}
	if f.Tag != "" && f.Tag != "All" {
		where += ` AND instr(' ' || tags || ' ', ' ' || ? || ' ') > 0`
		args = append(args, f.Tag)
	}

	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Skip)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts `+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range posts {
		if err := r.loadExtras(ctx, &posts[i]); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

func (r *postsRepo) ListPostsByAuthor(ctx context.Context, authorTag string, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_tag = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, authorTag, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		if err := r.loadExtras(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *postsRepo) UpdatePostContent(ctx context.Context, id, content string, tags []string, mod domain.ModerationResult) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE posts SET content = ?, tags = ?,
			mod_blurred = ?, mod_reason = ?, mod_severity = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		content, joinTags(tags), mod.IsBlurred, mod.Reason, mod.Severity, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postsRepo) SetCompanionResponse(ctx context.Context, id, response string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE posts SET companion_response = ?, companion_thinking = 0,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, response, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postsRepo) DeletePost(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *postsRepo) AddReaction(ctx context.Context, postID, userTag, kind string) error {
	// The composite primary key makes repeats idempotent.
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_reactions (post_id, user_tag, kind)
		 VALUES (?, ?, ?)`, postID, userTag, kind)
	return err
}

func (r *postsRepo) RemoveReaction(ctx context.Context, postID, userTag, kind string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM post_reactions WHERE post_id = ? AND user_tag = ? AND kind = ?`,
		postID, userTag, kind)
	return err
}

func (r *postsRepo) AddComment(ctx context.Context, postID string, c domain.Comment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_tag, content,
			mod_blurred, mod_reason, mod_severity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, postID, c.AuthorTag, c.Content,
		c.Moderation.IsBlurred, c.Moderation.Reason, c.Moderation.Severity,
		c.CreatedAt.UTC())
	return mapConstraint(err)
}

func (r *postsRepo) LikeComment(ctx context.Context, commentID, userTag string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO comment_likes (comment_id, user_tag)
		 VALUES (?, ?)`, commentID, userTag)
	return err
}

func (r *postsRepo) UnlikeComment(ctx context.Context, commentID, userTag string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = ? AND user_tag = ?`,
		commentID, userTag)
	return err
}

// loadExtras fills in reactions and comments for an already scanned post.
func (r *postsRepo) loadExtras(ctx context.Context, p *domain.Post) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT user_tag, kind FROM post_reactions WHERE post_id = ? ORDER BY created_at`,
		p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tag, kind string
		if err := rows.Scan(&tag, &kind); err != nil {
			return err
		}
		switch kind {
		case store.ReactionHug:
			p.Reactions.Hugs++
			p.Reactions.HuggedBy = append(p.Reactions.HuggedBy, tag)
		case store.ReactionHighFive:
			p.Reactions.HighFives++
			p.Reactions.HighFivedBy = append(p.Reactions.HighFivedBy, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return r.loadComments(ctx, p)
}

func (r *postsRepo) loadComments(ctx context.Context, p *domain.Post) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT c.id, c.author_tag, c.content,
			c.mod_blurred, c.mod_reason, c.mod_severity, c.created_at
		 FROM comments c WHERE c.post_id = ? ORDER BY c.created_at, c.id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.AuthorTag, &c.Content,
			&c.Moderation.IsBlurred, &c.Moderation.Reason, &c.Moderation.Severity,
			&c.CreatedAt); err != nil {
			return err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range comments {
		likeRows, err := r.q.QueryContext(ctx,
			`SELECT user_tag FROM comment_likes WHERE comment_id = ? ORDER BY created_at`,
			comments[i].ID)
		if err != nil {
			return err
		}
		for likeRows.Next() {
			var tag string
			if err := likeRows.Scan(&tag); err != nil {
				likeRows.Close()
				return err
			}
			comments[i].Likes++
			comments[i].LikedBy = append(comments[i].LikedBy, tag)
		}
		if err := likeRows.Err(); err != nil {
			likeRows.Close()
			return err
		}
		likeRows.Close()
	}

	p.Comments = comments
	return nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		p    domain.Post
		tags string
	)
	err := row.Scan(&p.ID, &p.AuthorTag, &p.Content, &p.PostType, &tags,
		&p.Moderation.IsBlurred, &p.Moderation.Reason, &p.Moderation.Severity,
		&p.CompanionResponse, &p.CompanionThinking, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	p.Tags = splitTags(tags)
	return p, nil
}
