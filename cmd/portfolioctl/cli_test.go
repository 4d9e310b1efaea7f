package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/client/apiclient"
	"github.com/portfolio/backend/internal/client/authstore"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers the auth endpoints the way the server does for one admin
// with two-factor login enabled.
type fakeAPI struct {
	mu      sync.Mutex
	adminID uuid.UUID
	active  map[string]bool
	logouts int
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api := &fakeAPI{adminID: uuid.New(), active: map[string]bool{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]string
	if r.Method == http.MethodPost && r.ContentLength > 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user := map[string]any{"id": f.adminID, "username": "owner", "email": "owner@example.dev", "two_factor_enabled": true}

	switch r.URL.Path {
	case "/api/v1/auth/login":
		if body["password"] != "s3cret-pass" {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid username or password",
				"errors": map[string]string{"code": "INVALID_CREDENTIALS", "request_id": "req-1"}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "Verification code sent",
			"data": map[string]any{"requires_two_factor": true, "temp_token": "tmp-1"}})
	case "/api/v1/auth/verify-otp":
		if body["temp_token"] != "tmp-1" {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Verification session is invalid or has expired, please log in again",
				"errors": map[string]string{"code": "ERR_TOKEN_INVALID"}})
			return
		}
		if body["code"] != "123456" {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid verification code",
				"errors": map[string]string{"code": "ERR_INVALID_OTP"}})
			return
		}
		f.active["acc-1"] = true
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "Login successful",
			"data": map[string]any{"token": map[string]any{"access_token": "acc-1", "token_type": "Bearer"}, "user": user}})
	case "/api/v1/auth/me":
		if !f.active[token] {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Session has expired, please log in again",
				"errors": map[string]string{"code": "SESSION_EXPIRED"}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "Success",
			"data": map[string]any{"user": user, "last_login": "2026-01-01T10:00:00Z"}})
	case "/api/v1/auth/logout":
		f.logouts++
		delete(f.active, token)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func reply(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body["timestamp"] = "2026-01-01T00:00:00Z"
	_ = json.NewEncoder(w).Encode(body)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoginVerifyWhoamiLogout(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	global := []string{"--server", srv.URL, "--session-file", path}

	out, err := execute(t, "", append([]string{"login", "-u", "owner", "-p", "s3cret-pass"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "portfolioctl verify")

	storage := authstore.NewFileStorage(path)
	pending, ok, err := storage.GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tmp-1", pending)
	assert.True(t, authstore.Gate(storage).NeedsLogin, "a pending challenge is not a session")

	out, err = execute(t, "", append([]string{"verify", "123456"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as owner")

	_, ok, err = storage.GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
	decision := authstore.Gate(storage)
	require.False(t, decision.NeedsLogin)
	assert.Equal(t, "acc-1", decision.Session.Token)
	assert.Equal(t, "owner", decision.Session.User.Username)

	out, err = execute(t, "", append([]string{"whoami"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "owner <owner@example.dev>")
	assert.Contains(t, out, "Two-factor: true")

	out, err = execute(t, "", append([]string{"logout"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = authstore.Load(storage)
	assert.ErrorIs(t, err, identity.ErrNoSession)

	_, err = execute(t, "", append([]string{"whoami"}, global...)...)
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogin_ReadsPasswordFromStdin(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	_, err := execute(t, "s3cret-pass\n", "login", "-u", "owner", "-p", "", "--server", srv.URL, "--session-file", path)
	require.NoError(t, err)

	pending, ok, err := authstore.NewFileStorage(path).GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tmp-1", pending)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	_, err := execute(t, "", "login", "-u", "owner", "-p", "nope", "--server", srv.URL, "--session-file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid username or password")

	_, ok, err := authstore.NewFileStorage(path).GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WithoutPendingLogin(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	_, err := execute(t, "", "verify", "123456", "--server", srv.URL, "--session-file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending login")
}

func TestVerify_WrongCodeKeepsPendingLogin(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	global := []string{"--server", srv.URL, "--session-file", path}
	storage := authstore.NewFileStorage(path)

	_, err := execute(t, "", append([]string{"login", "-u", "owner", "-p", "s3cret-pass"}, global...)...)
	require.NoError(t, err)

	_, err = execute(t, "", append([]string{"verify", "000000"}, global...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid verification code")

	pending, ok, err := storage.GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	require.True(t, ok, "a wrong code must leave the challenge in place")
	assert.Equal(t, "tmp-1", pending)

	out, err := execute(t, "", append([]string{"verify", "123456"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as owner")
}

func TestVerify_InvalidTempTokenClearsPendingLogin(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	storage := authstore.NewFileStorage(path)
	require.NoError(t, storage.SetItem(pendingTempTokenKey, "tmp-old"))

	_, err := execute(t, "", "verify", "123456", "--server", srv.URL, "--session-file", path)
	require.Error(t, err)

	_, ok, err := storage.GetItem(pendingTempTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChallengeSpent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"wrong code", &apiclient.Error{Status: http.StatusUnauthorized, Code: "ERR_INVALID_OTP"}, false},
		{"validation", &apiclient.Error{Status: http.StatusUnprocessableEntity, Code: "ERR_VALIDATION"}, false},
		{"attempts exceeded", &apiclient.Error{Status: http.StatusTooManyRequests, Code: "ERR_OTP_ATTEMPTS_EXCEEDED"}, true},
		{"rate limited", &apiclient.Error{Status: http.StatusTooManyRequests, Code: "ERR_RATE_LIMITED"}, true},
		{"code expired", &apiclient.Error{Status: http.StatusUnauthorized, Code: "ERR_OTP_EXPIRED"}, true},
		{"temp token expired", &apiclient.Error{Status: http.StatusUnauthorized, Code: "ERR_TOKEN_EXPIRED"}, true},
		{"temp token invalid", &apiclient.Error{Status: http.StatusUnauthorized, Code: "TOKEN_INVALID"}, true},
		{"transport", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, challengeSpent(tt.err))
		})
	}
}

func TestWhoami_ServerRejectsSessionClearsIt(t *testing.T) {
	srv := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	storage := authstore.NewFileStorage(path)

	// A session the server no longer knows about
	require.NoError(t, authstore.Save(storage, identity.Session{
		Token: "stale",
		User:  identity.Profile{ID: uuid.New(), Username: "owner"},
	}))

	_, err := execute(t, "", "whoami", "--server", srv.URL, "--session-file", path)
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = authstore.Load(storage)
	assert.ErrorIs(t, err, identity.ErrNoSession)
}
