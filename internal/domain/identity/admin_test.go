package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdmin(t *testing.T) {
	t.Run("creates admin with valid fields", func(t *testing.T) {
		admin, err := NewAdmin("  SiteOwner ", "Owner@Example.com", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "siteowner", admin.Username)
		assert.Equal(t, "owner@example.com", admin.Email)
		assert.Equal(t, AdminStatusActive, admin.Status)
		assert.NotEmpty(t, admin.PasswordHash)
		assert.NotEqual(t, "Password123", admin.PasswordHash)
		assert.False(t, admin.TwoFactorEnabled)
		assert.NotNil(t, admin.PasswordChangedAt)
	})

	t.Run("fails with short username", func(t *testing.T) {
		_, err := NewAdmin("ab", "owner@example.com", "Password123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("fails with invalid username characters", func(t *testing.T) {
		_, err := NewAdmin("site owner", "owner@example.com", "Password123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only contain letters")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewAdmin("siteowner", "not-an-email", "Password123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})

	t.Run("fails with weak password", func(t *testing.T) {
		_, err := NewAdmin("siteowner", "owner@example.com", "password")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "one letter and one number")
	})
}

func TestAdmin_Passwords(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	assert.True(t, admin.VerifyPassword("Password123"))
	assert.False(t, admin.VerifyPassword("Password124"))

	err = admin.ChangePassword("wrong", "NewPassword456")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Current password is incorrect")

	require.NoError(t, admin.ChangePassword("Password123", "NewPassword456"))
	assert.True(t, admin.VerifyPassword("NewPassword456"))

	events := admin.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAdminPasswordChanged, events[0].EventType())
}

func TestAdmin_LoginFailuresLockAccount(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.False(t, admin.RecordLoginFailure(5, 15*time.Minute))
	}
	assert.True(t, admin.CanLogin())

	assert.True(t, admin.RecordLoginFailure(5, 15*time.Minute))
	assert.True(t, admin.IsLocked())
	assert.False(t, admin.CanLogin())
}

func TestAdmin_ExpiredLockAllowsLogin(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	require.NoError(t, admin.Lock(15*time.Minute))
	past := time.Now().Add(-time.Minute)
	admin.LockedUntil = &past

	assert.False(t, admin.IsLocked())
	assert.True(t, admin.CanLogin())

	admin.RecordLoginSuccess("10.0.0.1")
	assert.Equal(t, AdminStatusActive, admin.Status)
	assert.Nil(t, admin.LockedUntil)
	assert.Equal(t, 0, admin.FailedAttempts)
	assert.Equal(t, "10.0.0.1", admin.LastLoginIP)
	require.NotNil(t, admin.LastLoginAt)

	events := admin.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, EventTypeAdminLoggedIn, events[len(events)-1].EventType())
}

func TestAdmin_DeactivatedCannotLogin(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	require.NoError(t, admin.Deactivate())
	assert.False(t, admin.CanLogin())
	assert.Error(t, admin.Deactivate())
	assert.Error(t, admin.Lock(time.Minute))
}

func TestAdmin_TwoFactor(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	require.NoError(t, admin.EnableTwoFactor())
	assert.True(t, admin.TwoFactorEnabled)
	assert.True(t, admin.Profile().TwoFactorEnabled)

	admin.DisableTwoFactor()
	assert.False(t, admin.TwoFactorEnabled)

	admin.Email = ""
	assert.Error(t, admin.EnableTwoFactor())
}

func TestProfile_Validate(t *testing.T) {
	assert.NoError(t, Profile{ID: uuid.New(), Username: "siteowner"}.Validate())
	assert.Error(t, Profile{Username: "siteowner"}.Validate())
	assert.Error(t, Profile{ID: uuid.New(), Username: "  "}.Validate())
}

func TestAdmin_ProfileFallsBackToUsername(t *testing.T) {
	admin, err := NewAdmin("siteowner", "owner@example.com", "Password123")
	require.NoError(t, err)

	assert.Equal(t, "siteowner", admin.Profile().DisplayName)
	require.NoError(t, admin.SetDisplayName("Jo Doe"))
	assert.Equal(t, "Jo Doe", admin.Profile().DisplayName)
}
