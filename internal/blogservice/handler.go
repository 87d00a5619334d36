package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/quill/internal/common"
	"golang.org/x/sync/errgroup"
)

const defaultViewTimeout = 2 * time.Second

func NewBlogService(db *sql.DB, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BlogService{
		m:           newBlogModel(db),
		logger:      logger,
		now:         time.Now,
		viewTimeout: defaultViewTimeout,
	}
}

// normalizeListQuery applies the listing defaults: page 1 (clamped to [1, MaxPage]),
// 10 per page clamped to [1, 100], and the published status filter.
func normalizeListQuery(q ListPostsQuery) (page, perPage int, status string) {
	page = DefaultPage
	if q.Page != nil {
		page = min(max(*q.Page, 1), MaxPage)
	}

	perPage = DefaultPerPage
	if q.PerPage != nil {
		perPage = min(max(*q.PerPage, 1), MaxPerPage)
	}

	status = StatusPublished
	if q.Status != nil {
		status = *q.Status
	}

	return page, perPage, status
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// ListPosts returns one page of posts and the totals for the whole filter.
// The page and the count are read concurrently.
func (s *BlogService) ListPosts(ctx context.Context, q ListPostsQuery) (*PostPage, error) {
	page, perPage, status := normalizeListQuery(q)

	var (
		items []*PostSummary
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.m.listPosts(gctx, status, perPage, (page-1)*perPage)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.m.countPosts(gctx, status)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PostPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// GetPostBySlug returns the post with its view count. The read itself is
// recorded as a view first, so the count includes it.
func (s *BlogService) GetPostBySlug(ctx context.Context, slug, origin string) (*Post, error) {
	p, err := s.m.getPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.recordView(ctx, p.ID, origin)

	views, err := s.m.countViews(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.ViewsCount = views

	return p, nil
}

// recordView never fails the read; errors are logged and counted.
func (s *BlogService) recordView(ctx context.Context, postID int, origin string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.viewTimeout)
	defer cancel()

	if err := s.m.insertView(ctx, postID, origin, s.now().UTC()); err != nil {
		s.logger.Warn("could not record blog view", slog.Int("post_id", postID), slog.String("error", err.Error()))
		common.BlogViewsTotal.WithLabelValues("failed").Inc()
		return
	}

	common.BlogViewsTotal.WithLabelValues("recorded").Inc()
}

// CreatePost stores a post for authorID. Script tags are stripped from the
// content and a published post without a date is published now.
func (s *BlogService) CreatePost(ctx context.Context, authorID string, req CreatePostRequest) (*Post, error) {
	if req.Status == "" {
		req.Status = StatusDraft
	}
	req.Content = stripScripts(req.Content)

	v := common.NewValidator()
	ValidateCreatePost(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	p := &Post{
		AuthorID:    authorID,
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Status:      req.Status,
		PublishedAt: req.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.Status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	if err := s.m.insert(context.WithoutCancel(ctx), p); err != nil {
		return nil, err
	}

	s.logger.Info("blog post created", slog.Int("id", p.ID), slog.String("slug", p.Slug), slog.String("author_id", authorID))

	return p, nil
}
