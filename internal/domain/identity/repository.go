package identity

import (
	"context"

	"github.com/google/uuid"
)

// AdminRepository defines the interface for admin persistence
type AdminRepository interface {
	// Create creates a new admin
	Create(ctx context.Context, admin *Admin) error

	// Update updates an existing admin
	Update(ctx context.Context, admin *Admin) error

	// FindByID finds an admin by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Admin, error)

	// FindByUsername finds an admin by username
	FindByUsername(ctx context.Context, username string) (*Admin, error)

	// FindByEmail finds an admin by email
	FindByEmail(ctx context.Context, email string) (*Admin, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
