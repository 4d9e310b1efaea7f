//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/portfolio/backend/internal/infrastructure/migration"
	"github.com/portfolio/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgres starts a throwaway PostgreSQL container with the embedded
// migrations applied
func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("portfolio_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewEmbedded(sqlDB, migrations.FS, ".", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db
}

func usd(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoney(decimal.RequireFromString(amount), valueobject.USD)
	require.NoError(t, err)
	return m
}

func TestPostgres_Repositories(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	db := newPostgres(t)
	ctx := context.Background()

	t.Run("admins are unique by username and email", func(t *testing.T) {
		repo := NewGormAdminRepository(db)
		admin, err := identity.NewAdmin("owner", "owner@example.dev", "correct-horse-battery-9")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, admin))

		found, err := repo.FindByUsername(ctx, "OWNER")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)

		exists, err := repo.ExistsByEmail(ctx, "owner@example.dev")
		require.NoError(t, err)
		assert.True(t, exists)

		dup, err := identity.NewAdmin("owner", "other@example.dev", "correct-horse-battery-9")
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("published posts are listed by tag", func(t *testing.T) {
		repo := NewGormPostRepository(db)
		draft, err := content.NewPost("Draft notes", "", "body")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, draft))

		live, err := content.NewPost("Shipping Go", "", "body")
		require.NoError(t, err)
		require.NoError(t, live.Update("Shipping Go", "summary", "body", "", []string{"go", "ops"}))
		require.NoError(t, live.Publish(time.Now().Add(-time.Minute)))
		require.NoError(t, repo.Save(ctx, live))

		posts, total, err := repo.FindAll(ctx, content.PostFilter{
			Filter:        shared.Filter{Page: 1, PageSize: 10},
			Tag:           "go",
			PublishedOnly: true,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, posts, 1)
		assert.Equal(t, "shipping-go", posts[0].Slug)
		assert.ElementsMatch(t, []string{"go", "ops"}, posts[0].Tags)

		taken, err := repo.ExistsBySlug(ctx, "shipping-go", nil)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = repo.ExistsBySlug(ctx, "shipping-go", &live.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("stock never goes negative inside an order transaction", func(t *testing.T) {
		products := NewGormProductRepository(db)
		product, err := marketplace.NewProduct("Sticker pack", "", usd(t, "4.50"), 2)
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))

		uow := NewGormUnitOfWork(db)
		place := func(qty int) error {
			return uow.Do(ctx, func(p marketplace.ProductRepository, o marketplace.OrderRepository) error {
				if err := p.AdjustStock(ctx, product.ID, -qty); err != nil {
					return err
				}
				order, err := marketplace.NewOrder("Ada", "ada@example.dev", []marketplace.OrderItem{{
					ProductID:   product.ID,
					ProductName: product.Name,
					UnitPrice:   product.Price,
					Quantity:    qty,
				}})
				if err != nil {
					return err
				}
				return o.Save(ctx, order)
			})
		}

		require.NoError(t, place(2))
		assert.ErrorIs(t, place(1), shared.ErrInsufficientStock)

		reloaded, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.Stock)

		orders, total, err := NewGormOrderRepository(db).FindAll(ctx, marketplace.OrderFilter{Filter: shared.Filter{Page: 1, PageSize: 10}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, orders, 1)
		require.Len(t, orders[0].Items, 1)
		assert.True(t, orders[0].Total.Amount().Equal(decimal.RequireFromString("9.00")))
	})

	t.Run("a stale product save cannot undo an order's stock change", func(t *testing.T) {
		products := NewGormProductRepository(db)
		product, err := marketplace.NewProduct("Enamel pin", "", usd(t, "8.00"), 10)
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))

		stale, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		require.NoError(t, products.AdjustStock(ctx, product.ID, -3))

		require.NoError(t, stale.Update(stale.Name, "new copy", "", stale.Price))
		assert.ErrorIs(t, products.Save(ctx, stale), shared.ErrConcurrentUpdate)

		fresh, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, fresh.Stock)
		require.NoError(t, fresh.Update(fresh.Name, "new copy", "", fresh.Price))
		require.NoError(t, products.Save(ctx, fresh))
		assert.Equal(t, fresh.Version, fresh.StoredVersion())
	})

	t.Run("only one of two concurrent cancels restocks", func(t *testing.T) {
		products := NewGormProductRepository(db)
		orders := NewGormOrderRepository(db)
		product, err := marketplace.NewProduct("Zine", "", usd(t, "3.00"), 5)
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))
		require.NoError(t, products.AdjustStock(ctx, product.ID, -2))

		order, err := marketplace.NewOrder("Grace", "grace@example.dev", []marketplace.OrderItem{{
			ProductID: product.ID, ProductName: product.Name, UnitPrice: product.Price, Quantity: 2,
		}})
		require.NoError(t, err)
		require.NoError(t, orders.Save(ctx, order))

		uow := NewGormUnitOfWork(db)
		cancel := func(o *marketplace.Order) error {
			return uow.Do(ctx, func(p marketplace.ProductRepository, r marketplace.OrderRepository) error {
				if err := o.TransitionTo(marketplace.OrderStatusCancelled); err != nil {
					return err
				}
				if err := p.AdjustStock(ctx, product.ID, 2); err != nil {
					return err
				}
				return r.Save(ctx, o)
			})
		}

		first, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		second, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, cancel(first))
		assert.ErrorIs(t, cancel(second), shared.ErrConcurrentUpdate)

		reloaded, err := products.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, reloaded.Stock)
	})

	t.Run("missing rows map to not found", func(t *testing.T) {
		_, err := NewGormProjectRepository(db).FindBySlug(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = NewGormOrderRepository(db).FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
