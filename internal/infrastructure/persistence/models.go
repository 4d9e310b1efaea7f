package persistence

import (
	"errors"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// maxPageSize caps any list query
const maxPageSize = 100

// AllModels lists every table the application owns, in dependency order
func AllModels() []any {
	return []any{
		&models.AdminModel{},
		&models.PostModel{},
		&models.ProjectModel{},
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.ContactMessageModel{},
	}
}

// notFound maps gorm's missing-record error onto the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
