package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sushihentaime/quill/internal/common"
)

const (
	slugConstraint   = "blogs_slug_key"
	authorConstraint = "blogs_author_id_fkey"
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// listPosts returns one page of posts. An empty status matches every post.
// Posts without published_at always sort after the dated ones.
func (m *BlogModel) listPosts(ctx context.Context, status string, limit, offset int) ([]*PostSummary, error) {
	query := `
		SELECT id, slug, title, excerpt, status, published_at
		FROM blogs
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY published_at DESC NULLS LAST, created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, common.NewStoreError("blogs.list", err)
	}
	defer rows.Close()

	posts := []*PostSummary{}
	for rows.Next() {
		var p PostSummary
		var excerpt sql.NullString
		var publishedAt sql.NullTime

		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &excerpt, &p.Status, &publishedAt); err != nil {
			return nil, common.NewStoreError("blogs.list", err)
		}

		p.Excerpt = stringPtr(excerpt)
		p.PublishedAt = timePtr(publishedAt)
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, common.NewStoreError("blogs.list", err)
	}

	return posts, nil
}

func (m *BlogModel) countPosts(ctx context.Context, status string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM blogs
		WHERE ($1::text = '' OR status = $1::text)`

	var total int
	if err := m.db.QueryRowContext(ctx, query, status).Scan(&total); err != nil {
		return 0, common.NewStoreError("blogs.count", err)
	}

	return total, nil
}

func (m *BlogModel) getPostBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT id, author_id, title, slug, excerpt, content, status, published_at, created_at, updated_at
		FROM blogs
		WHERE slug = $1`

	var p Post
	var excerpt sql.NullString
	var publishedAt sql.NullTime

	err := m.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Slug,
		&excerpt,
		&p.Content,
		&p.Status,
		&publishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrNotFound
		default:
			return nil, common.NewStoreError("blogs.get_by_slug", err)
		}
	}

	p.Excerpt = stringPtr(excerpt)
	p.PublishedAt = timePtr(publishedAt)

	return &p, nil
}

func (m *BlogModel) insert(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO blogs (author_id, title, slug, excerpt, content, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	args := []any{
		p.AuthorID,
		p.Title,
		p.Slug,
		p.Excerpt,
		p.Content,
		p.Status,
		p.PublishedAt,
		p.CreatedAt,
		p.UpdatedAt,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&p.ID)
	if err != nil {
		switch {
		case common.UniqueViolation(err, slugConstraint):
			return common.ErrConflict
		case common.ForeignKeyViolation(err, authorConstraint):
			return common.ErrUnauthorized
		default:
			return common.NewStoreError("blogs.insert", err)
		}
	}

	return nil
}

func (m *BlogModel) insertView(ctx context.Context, postID int, origin string, at time.Time) error {
	query := `
		INSERT INTO blog_views (post_id, ip_address, timestamp)
		VALUES ($1, $2, $3)`

	if _, err := m.db.ExecContext(ctx, query, postID, origin, at); err != nil {
		return common.NewStoreError("blog_views.insert", err)
	}

	return nil
}

func (m *BlogModel) countViews(ctx context.Context, postID int) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM blog_views
		WHERE post_id = $1`

	var n int64
	if err := m.db.QueryRowContext(ctx, query, postID).Scan(&n); err != nil {
		return 0, common.NewStoreError("blog_views.count", err)
	}

	return n, nil
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
