package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	appcontent "github.com/portfolio/backend/internal/application/content"
	appmarketplace "github.com/portfolio/backend/internal/application/marketplace"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedPosts    int
	seedProjects int
	seedProducts int
	seedValue    uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with generated demo content",
	Long: `Generate posts, projects and products for local development.

Every generated slug carries a random suffix, so seeding twice adds more
entries instead of failing on duplicates. Use --seed for repeatable data.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedPosts, "posts", 12, "Number of posts")
	f.IntVar(&seedProjects, "projects", 6, "Number of projects")
	f.IntVar(&seedProducts, "products", 8, "Number of products")
	f.Uint64Var(&seedValue, "seed", 0, "Random seed (0 picks a random one)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s := &seeder{faker: gofakeit.New(seedValue), content: b.content, marketplace: b.marketplace}
	if err := s.posts(ctx, seedPosts); err != nil {
		return err
	}
	if err := s.projects(ctx, seedProjects); err != nil {
		return err
	}
	if err := s.products(ctx, seedProducts); err != nil {
		return err
	}
	printf(cmd, "Seeded %d posts, %d projects and %d products\n", seedPosts, seedProjects, seedProducts)
	return nil
}

type seeder struct {
	faker       *gofakeit.Faker
	content     *appcontent.Service
	marketplace *appmarketplace.Service
}

func (s *seeder) slug(title string) string {
	return valueobject.Slugify(title) + "-" + s.faker.UUID()[:8]
}

func (s *seeder) tags(n int) []string {
	tags := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(tags) < n {
		tag := strings.ToLower(s.faker.BuzzWord())
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func (s *seeder) paragraphs(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.faker.Paragraph(1, 4, 14, " ")
	}
	return strings.Join(parts, "\n\n")
}

func (s *seeder) posts(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		title := strings.TrimSuffix(s.faker.Sentence(5), ".")
		post, err := s.content.CreatePost(ctx, appcontent.CreatePostRequest{
			Title:   title,
			Slug:    s.slug(title),
			Summary: s.faker.Sentence(16),
			Body:    s.paragraphs(s.faker.Number(3, 6)),
			Tags:    s.tags(s.faker.Number(1, 4)),
			// A quarter of the posts stay drafts
			Publish: i%4 != 3,
		})
		if err != nil {
			return fmt.Errorf("seed post %d: %w", i+1, err)
		}
		log.Debug("Seeded post", zap.String("slug", post.Slug))
	}
	return nil
}

func (s *seeder) projects(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		title := s.faker.AppName()
		project, err := s.content.CreateProject(ctx, appcontent.CreateProjectRequest{
			Title:       title,
			Slug:        s.slug(title),
			Summary:     s.faker.Sentence(12),
			Description: s.paragraphs(2),
			TechStack:   s.tags(s.faker.Number(2, 5)),
			RepoURL:     s.faker.URL(),
			LiveURL:     s.faker.URL(),
			Featured:    i < 3,
			SortOrder:   i,
		})
		if err != nil {
			return fmt.Errorf("seed project %d: %w", i+1, err)
		}
		log.Debug("Seeded project", zap.String("slug", project.Slug))
	}
	return nil
}

func (s *seeder) products(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		name := s.faker.ProductName()
		product, err := s.marketplace.CreateProduct(ctx, appmarketplace.CreateProductRequest{
			Name:        name,
			Slug:        s.slug(name),
			Description: s.faker.ProductDescription(),
			Price:       decimal.NewFromFloat(s.faker.Price(5, 500)).Round(2),
			Currency:    "USD",
			Stock:       s.faker.Number(0, 50),
		})
		if err != nil {
			return fmt.Errorf("seed product %d: %w", i+1, err)
		}
		log.Debug("Seeded product", zap.String("slug", product.Slug))
	}
	return nil
}
