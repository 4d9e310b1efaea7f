package identity

import (
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
)

// Aggregate type constant for Admin
const AggregateTypeAdmin = "Admin"

// Admin domain event types
const (
	EventTypeAdminLoggedIn        = "AdminLoggedIn"
	EventTypeAdminPasswordChanged = "AdminPasswordChanged"
)

// AdminLoggedInEvent is published after a completed login
type AdminLoggedInEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	IP       string    `json:"ip"`
	At       time.Time `json:"at"`
}

// NewAdminLoggedInEvent creates a new AdminLoggedInEvent
func NewAdminLoggedInEvent(admin *Admin) *AdminLoggedInEvent {
	at := time.Now()
	if admin.LastLoginAt != nil {
		at = *admin.LastLoginAt
	}
	return &AdminLoggedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminLoggedIn, AggregateTypeAdmin, admin.ID),
		Username:        admin.Username,
		IP:              admin.LastLoginIP,
		At:              at,
	}
}

// AdminPasswordChangedEvent is published when the password is changed
type AdminPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username  string    `json:"username"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewAdminPasswordChangedEvent creates a new AdminPasswordChangedEvent
func NewAdminPasswordChangedEvent(admin *Admin) *AdminPasswordChangedEvent {
	changedAt := time.Now()
	if admin.PasswordChangedAt != nil {
		changedAt = *admin.PasswordChangedAt
	}
	return &AdminPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminPasswordChanged, AggregateTypeAdmin, admin.ID),
		Username:        admin.Username,
		ChangedAt:       changedAt,
	}
}
