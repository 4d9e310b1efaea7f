package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/contact"
	"github.com/portfolio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactMessageRepository implements contact.MessageRepository using GORM
type GormContactMessageRepository struct {
	db *gorm.DB
}

// NewGormContactMessageRepository creates a new GormContactMessageRepository
func NewGormContactMessageRepository(db *gorm.DB) *GormContactMessageRepository {
	return &GormContactMessageRepository{db: db}
}

// Save inserts or updates a message
func (r *GormContactMessageRepository) Save(ctx context.Context, msg *contact.Message) error {
	return upsert(r.db.WithContext(ctx), models.ContactMessageModelFromDomain(msg))
}

// FindByID finds a message by ID
func (r *GormContactMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	var model models.ContactMessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of messages, newest first by default
func (r *GormContactMessageRepository) FindAll(ctx context.Context, filter contact.MessageFilter) ([]*contact.Message, int64, error) {
	filter.Filter = filter.Filter.Normalize(maxPageSize)
	query := r.db.WithContext(ctx).Model(&models.ContactMessageModel{})
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContactMessageModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ContactMessageSortFields, "created_at")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	messages := make([]*contact.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].ToDomain()
	}
	return messages, total, nil
}

var _ contact.MessageRepository = (*GormContactMessageRepository)(nil)
