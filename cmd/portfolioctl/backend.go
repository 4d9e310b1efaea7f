package main

import (
	"fmt"

	appcontent "github.com/portfolio/backend/internal/application/content"
	appfeed "github.com/portfolio/backend/internal/application/feed"
	appmarketplace "github.com/portfolio/backend/internal/application/marketplace"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/portfolio/backend/internal/infrastructure/event"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// backend is the direct database wiring used by the offline commands.
// Feeds are built without the response cache; the running server's cache
// expires on its own TTL.
type backend struct {
	cfg         *config.Config
	db          *persistence.Database
	admins      identity.AdminRepository
	content     *appcontent.Service
	marketplace *appmarketplace.Service
	feeds       *appfeed.Service
}

func openBackend() (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel("warn"))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
	}
	log.Debug("Database connected", zap.String("driver", db.Driver()))

	posts := persistence.NewGormPostRepository(db.DB)
	projects := persistence.NewGormProjectRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)

	feeds := appfeed.NewService(posts, projects, products, nil, 0, appfeed.Site{
		BaseURL:     cfg.App.BaseURL,
		Title:       cfg.App.SiteTitle,
		Description: cfg.App.SiteDescription,
		Language:    cfg.App.Language,
	})

	return &backend{
		cfg:     cfg,
		db:      db,
		admins:  persistence.NewGormAdminRepository(db.DB),
		content: appcontent.NewService(posts, projects, feeds, log),
		marketplace: appmarketplace.NewService(
			products,
			persistence.NewGormOrderRepository(db.DB),
			persistence.NewGormUnitOfWork(db.DB),
			event.NewInMemoryEventBus(log),
			feeds,
			log,
		),
		feeds: feeds,
	}, nil
}

func (b *backend) Close() error {
	return b.db.Close()
}
