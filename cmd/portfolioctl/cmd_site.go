package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appcontent "github.com/portfolio/backend/internal/application/content"
	"github.com/portfolio/backend/internal/infrastructure/ogimage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const ogimagePageSize = 100

var (
	sitemapOut  string
	rssOut      string
	ogOutDir    string
	ogRemoteURL string
	ogNoSandbox bool
	ogAccent    string
	ogOnlySlug  string
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write sitemap.xml for the published site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeDocument(cmd, sitemapOut, func(ctx context.Context, b *backend) ([]byte, error) {
			return b.feeds.Sitemap(ctx)
		})
	},
}

var rssCmd = &cobra.Command{
	Use:   "rss",
	Short: "Write the RSS 2.0 feed of published posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeDocument(cmd, rssOut, func(ctx context.Context, b *backend) ([]byte, error) {
			return b.feeds.RSS(ctx)
		})
	},
}

var ogimageCmd = &cobra.Command{
	Use:   "ogimage",
	Short: "Render Open Graph preview images for published posts",
	Long: `Render a 1200x630 PNG card for every published post into --out-dir,
named <slug>.png. Chrome is launched headless unless --remote-url points
at a running DevTools endpoint.`,
	Args: cobra.NoArgs,
	RunE: runOGImage,
}

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapOut, "output", "o", "-", "Output file, - for stdout")
	rssCmd.Flags().StringVarP(&rssOut, "output", "o", "-", "Output file, - for stdout")

	f := ogimageCmd.Flags()
	f.StringVar(&ogOutDir, "out-dir", "og", "Directory for the generated images")
	f.StringVar(&ogRemoteURL, "remote-url", "", "DevTools websocket URL of a running Chrome")
	f.BoolVar(&ogNoSandbox, "no-sandbox", false, "Run Chrome without its sandbox (containers, root)")
	f.StringVar(&ogAccent, "accent", "", "CSS color of the card's top bar")
	f.StringVar(&ogOnlySlug, "slug", "", "Render a single post")
}

func writeDocument(cmd *cobra.Command, out string, build func(context.Context, *backend) ([]byte, error)) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	doc, err := build(ctx, b)
	if err != nil {
		return err
	}
	if out == "" || out == "-" {
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("Document written", zap.String("path", out), zap.Int("bytes", len(doc)))
	return nil
}

func runOGImage(cmd *cobra.Command, _ []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if err := os.MkdirAll(ogOutDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", ogOutDir, err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	renderer := ogimage.NewRenderer(ogimage.Config{
		RemoteURL: ogRemoteURL,
		NoSandbox: ogNoSandbox,
		Logger:    log,
	})
	defer func() { _ = renderer.Close() }()

	rendered := 0
	err = eachPublishedPost(ctx, b.content, func(p appcontent.PostSummary) error {
		if ogOnlySlug != "" && p.Slug != ogOnlySlug {
			return nil
		}
		png, err := renderer.Render(ctx, ogimage.Card{
			Title:    p.Title,
			Subtitle: p.Summary,
			SiteName: b.cfg.App.SiteTitle,
			Tags:     p.Tags,
			Accent:   ogAccent,
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", p.Slug, err)
		}
		path := filepath.Join(ogOutDir, p.Slug+".png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Debug("Card rendered", zap.String("path", path))
		rendered++
		return nil
	})
	if err != nil {
		return err
	}
	printf(cmd, "Rendered %d image(s) into %s\n", rendered, ogOutDir)
	return nil
}

func eachPublishedPost(ctx context.Context, svc *appcontent.Service, fn func(appcontent.PostSummary) error) error {
	for page := 1; ; page++ {
		posts, total, _, err := svc.ListPublishedPosts(ctx, appcontent.PostListQuery{Page: page, PageSize: ogimagePageSize})
		if err != nil {
			return err
		}
		for _, p := range posts {
			if err := fn(p); err != nil {
				return err
			}
		}
		if len(posts) == 0 || int64(page*ogimagePageSize) >= total {
			return nil
		}
	}
}
