package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AdminStatus represents the status of an admin account
type AdminStatus string

const (
	AdminStatusActive      AdminStatus = "active"      // Normal active status
	AdminStatusLocked      AdminStatus = "locked"      // Locked due to failed attempts
	AdminStatusDeactivated AdminStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	numberRegex   = regexp.MustCompile(`[0-9]`)
)

// Admin is the site administrator account.
// It is the aggregate root for authentication.
type Admin struct {
	shared.BaseAggregateRoot
	Username          string
	Email             string
	PasswordHash      string
	DisplayName       string
	Status            AdminStatus
	TwoFactorEnabled  bool
	LastLoginAt       *time.Time
	LastLoginIP       string
	FailedAttempts    int
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// NewAdmin creates a new active admin account
func NewAdmin(username, email, password string) (*Admin, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	admin := &Admin{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		Status:            AdminStatusActive,
		PasswordChangedAt: &now,
	}

	return admin, nil
}

// SetDisplayName sets the admin's display name
func (a *Admin) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	a.DisplayName = strings.TrimSpace(displayName)
	a.Touch()
	return nil
}

// ChangePassword changes the password after verifying the current one
func (a *Admin) ChangePassword(oldPassword, newPassword string) error {
	if !a.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return a.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (a *Admin) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	a.PasswordHash = passwordHash
	now := time.Now()
	a.PasswordChangedAt = &now
	a.Touch()

	a.AddDomainEvent(NewAdminPasswordChangedEvent(a))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (a *Admin) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// EnableTwoFactor turns on the e-mailed one-time code step at login
func (a *Admin) EnableTwoFactor() error {
	if a.Email == "" {
		return shared.NewDomainError("EMAIL_REQUIRED", "An email address is required for two-factor authentication")
	}
	a.TwoFactorEnabled = true
	a.Touch()
	return nil
}

// DisableTwoFactor turns off the one-time code step
func (a *Admin) DisableTwoFactor() {
	a.TwoFactorEnabled = false
	a.Touch()
}

// Deactivate deactivates the account
func (a *Admin) Deactivate() error {
	if a.Status == AdminStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Admin is already deactivated")
	}
	a.Status = AdminStatusDeactivated
	a.Touch()
	return nil
}

// Lock locks the account for the given duration
func (a *Admin) Lock(duration time.Duration) error {
	if a.Status == AdminStatusDeactivated {
		return shared.NewDomainError("ADMIN_DEACTIVATED", "Cannot lock a deactivated admin")
	}

	a.Status = AdminStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		a.LockedUntil = &lockedUntil
	}
	a.Touch()
	return nil
}

// Unlock unlocks the account
func (a *Admin) Unlock() error {
	if a.Status != AdminStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "Admin is not locked")
	}

	a.Status = AdminStatusActive
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.Touch()
	return nil
}

// RecordLoginSuccess records a successful login
func (a *Admin) RecordLoginSuccess(ip string) {
	now := time.Now()
	a.LastLoginAt = &now
	a.LastLoginIP = ip
	a.FailedAttempts = 0
	if a.Status == AdminStatusLocked {
		// an expired lock is cleared by the next successful login
		a.Status = AdminStatusActive
		a.LockedUntil = nil
	}
	a.Touch()

	a.AddDomainEvent(NewAdminLoggedInEvent(a))
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked as a result.
func (a *Admin) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	a.FailedAttempts++
	a.Touch()

	if a.FailedAttempts >= maxAttempts {
		_ = a.Lock(lockDuration)
		return true
	}
	return false
}

// IsLocked returns true if the account is locked and the lock has not expired
func (a *Admin) IsLocked() bool {
	if a.Status != AdminStatusLocked {
		return false
	}
	if a.LockedUntil != nil && time.Now().After(*a.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if the admin may authenticate
func (a *Admin) CanLogin() bool {
	if a.Status == AdminStatusDeactivated {
		return false
	}
	return !a.IsLocked()
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (a *Admin) GetDisplayNameOrUsername() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Profile returns the public projection stored alongside a session
func (a *Admin) Profile() Profile {
	return Profile{
		ID:               a.ID,
		Username:         a.Username,
		Email:            a.Email,
		DisplayName:      a.GetDisplayNameOrUsername(),
		TwoFactorEnabled: a.TwoFactorEnabled,
		LastLoginAt:      a.LastLoginAt,
	}
}

// Profile is the serializable admin profile handed to clients
type Profile struct {
	ID               uuid.UUID  `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// Validate reports whether a decoded profile carries the fields a session needs
func (p Profile) Validate() error {
	if p.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROFILE", "Profile is missing an id")
	}
	if strings.TrimSpace(p.Username) == "" {
		return shared.NewDomainError("INVALID_PROFILE", "Profile is missing a username")
	}
	return nil
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores input past 72 bytes
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !numberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
