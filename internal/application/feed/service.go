// Package feed assembles the sitemap and RSS feed from published content.
package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/feed"
	"golang.org/x/sync/errgroup"
)

// pageSize is the batch size used when walking repositories
const pageSize = 100

// rssLimit caps the number of posts in the feed
const rssLimit = 50

// Site describes the public site the documents link to
type Site struct {
	BaseURL     string
	Title       string
	Description string
	Language    string
}

// Paths of the public site sections
const (
	PathBlog     = "/blog/"
	PathProjects = "/projects/"
	PathShop     = "/shop/"
)

var staticPages = []feed.URL{
	{Loc: "/", ChangeFreq: feed.ChangeWeekly, Priority: 1.0},
	{Loc: "/blog", ChangeFreq: feed.ChangeDaily, Priority: 0.9},
	{Loc: "/projects", ChangeFreq: feed.ChangeMonthly, Priority: 0.8},
	{Loc: "/shop", ChangeFreq: feed.ChangeWeekly, Priority: 0.7},
	{Loc: "/contact", ChangeFreq: feed.ChangeYearly, Priority: 0.3},
}

// Service renders the sitemap and RSS documents
type Service struct {
	posts    content.PostRepository
	projects content.ProjectRepository
	products marketplace.ProductRepository
	cache    cache.Store
	cacheTTL time.Duration
	site     Site
	now      func() time.Time
}

// NewService creates a feed service. A nil store disables caching.
func NewService(posts content.PostRepository, projects content.ProjectRepository, products marketplace.ProductRepository,
	store cache.Store, cacheTTL time.Duration, site Site) *Service {
	return &Service{
		posts:    posts,
		projects: projects,
		products: products,
		cache:    store,
		cacheTTL: cacheTTL,
		site:     site,
		now:      time.Now,
	}
}

// Sitemap returns the sitemap.xml document
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, "feed:sitemap.xml", s.buildSitemap)
}

// RSS returns the rss.xml document
func (s *Service) RSS(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, "feed:rss.xml", s.buildRSS)
}

// Invalidate drops cached documents after content changes
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, "feed:sitemap.xml", "feed:rss.xml")
	}
}

func (s *Service) cached(ctx context.Context, key string, build func(context.Context) ([]byte, error)) ([]byte, error) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return build(ctx)
	}
	if raw, err := s.cache.Get(ctx, key); err == nil {
		return []byte(raw), nil
	}
	doc, err := build(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, string(doc), s.cacheTTL)
	return doc, nil
}

func (s *Service) buildSitemap(ctx context.Context) ([]byte, error) {
	var (
		posts    []*content.Post
		projects []*content.Project
		products []*marketplace.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.publishedPosts(gctx, 0)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.FindAll(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.activeProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load sitemap content: %w", err)
	}

	urls := make([]feed.URL, 0, len(staticPages)+len(posts)+len(projects)+len(products))
	for _, p := range staticPages {
		p.Loc = s.site.BaseURL + p.Loc
		urls = append(urls, p)
	}
	for _, p := range posts {
		urls = append(urls, feed.URL{Loc: s.link(PathBlog, p.Slug), LastMod: p.UpdatedAt, ChangeFreq: feed.ChangeMonthly, Priority: 0.7})
	}
	for _, p := range projects {
		priority := 0.6
		if p.Featured {
			priority = 0.8
		}
		urls = append(urls, feed.URL{Loc: s.link(PathProjects, p.Slug), LastMod: p.UpdatedAt, ChangeFreq: feed.ChangeMonthly, Priority: priority})
	}
	for _, p := range products {
		urls = append(urls, feed.URL{Loc: s.link(PathShop, p.Slug), LastMod: p.UpdatedAt, ChangeFreq: feed.ChangeWeekly, Priority: 0.5})
	}
	return feed.Sitemap(urls)
}

func (s *Service) buildRSS(ctx context.Context) ([]byte, error) {
	posts, err := s.publishedPosts(ctx, rssLimit)
	if err != nil {
		return nil, fmt.Errorf("load rss posts: %w", err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(*posts[j].PublishedAt)
	})

	items := make([]feed.Item, 0, len(posts))
	for _, p := range posts {
		link := s.link(PathBlog, p.Slug)
		items = append(items, feed.Item{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PublishedAt: *p.PublishedAt,
			Description: p.Summary,
			Categories:  p.Tags,
		})
	}

	return feed.RSS(feed.Channel{
		Title:       s.site.Title,
		Link:        s.site.BaseURL,
		Description: s.site.Description,
		Language:    s.site.Language,
		SelfURL:     s.site.BaseURL + "/rss.xml",
		BuiltAt:     s.now(),
	}, items)
}

// publishedPosts pages through published posts, newest first. limit <= 0 loads all.
func (s *Service) publishedPosts(ctx context.Context, limit int) ([]*content.Post, error) {
	var all []*content.Post
	for page := 1; ; page++ {
		filter := content.PostFilter{
			Filter:        shared.Filter{Page: page, PageSize: pageSize, OrderBy: "published_at", OrderDir: "desc"},
			PublishedOnly: true,
		}
		batch, total, err := s.posts.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if len(batch) < pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (s *Service) activeProducts(ctx context.Context) ([]*marketplace.Product, error) {
	var all []*marketplace.Product
	for page := 1; ; page++ {
		filter := marketplace.ProductFilter{
			Filter:     shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"},
			ActiveOnly: true,
		}
		batch, total, err := s.products.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (s *Service) link(section, slug string) string {
	return s.site.BaseURL + section + slug
}
