package models

import (
	"time"

	"github.com/portfolio/backend/internal/domain/identity"
)

// AdminModel is the persistence model for the Admin aggregate.
type AdminModel struct {
	AggregateModel
	Username          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email             string               `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash      string               `gorm:"type:varchar(255);not null"`
	DisplayName       string               `gorm:"type:varchar(100)"`
	Status            identity.AdminStatus `gorm:"type:varchar(20);not null;default:'active'"`
	TwoFactorEnabled  bool                 `gorm:"not null;default:false"`
	LastLoginAt       *time.Time
	LastLoginIP       string `gorm:"type:varchar(45)"`
	FailedAttempts    int    `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (AdminModel) TableName() string {
	return "admins"
}

// ToDomain converts the persistence model to a domain Admin.
func (m *AdminModel) ToDomain() *identity.Admin {
	return &identity.Admin{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		DisplayName:       m.DisplayName,
		Status:            m.Status,
		TwoFactorEnabled:  m.TwoFactorEnabled,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		PasswordChangedAt: m.PasswordChangedAt,
	}
}

// FromDomain populates the persistence model from a domain Admin.
func (m *AdminModel) FromDomain(a *identity.Admin) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Username = a.Username
	m.Email = a.Email
	m.PasswordHash = a.PasswordHash
	m.DisplayName = a.DisplayName
	m.Status = a.Status
	m.TwoFactorEnabled = a.TwoFactorEnabled
	m.LastLoginAt = a.LastLoginAt
	m.LastLoginIP = a.LastLoginIP
	m.FailedAttempts = a.FailedAttempts
	m.LockedUntil = a.LockedUntil
	m.PasswordChangedAt = a.PasswordChangedAt
}

// AdminModelFromDomain creates a new persistence model from a domain Admin.
func AdminModelFromDomain(a *identity.Admin) *AdminModel {
	m := &AdminModel{}
	m.FromDomain(a)
	return m
}
