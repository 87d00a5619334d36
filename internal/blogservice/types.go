package blogservice

import (
	"database/sql"
	"math"
	"log/slog"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"

	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (page-1)*per_page inside int.
	MaxPage = math.MaxInt / MaxPerPage
)

// Post is the full blog post returned by the detail read.
type Post struct {
	ID          int        `json:"id"`
	AuthorID    string     `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ViewsCount  int64      `json:"views_count"`
}

// PostSummary is one item of a listing page.
type PostSummary struct {
	ID          int        `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
}

type PostPage struct {
	Items      []*PostSummary `json:"items"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// ListPostsQuery carries the raw listing parameters. A nil Status means
// "published"; a pointer to the empty string disables the filter.
type ListPostsQuery struct {
	Page    *int
	PerPage *int
	Status  *string
}

type CreatePostRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m           *BlogModel
	logger      *slog.Logger
	now         func() time.Time
	viewTimeout time.Duration
}
