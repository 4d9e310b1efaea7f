package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/client/apiclient"
	"github.com/portfolio/backend/internal/client/authstore"
	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pendingTempTokenKey holds the temporary token between login and verify.
// It is not part of the session and never passes the server's gate.
const pendingTempTokenKey = "admin_pending_temp_token"

var errNotLoggedIn = errors.New("not logged in, run: portfolioctl login")

var (
	loginUsername string
	loginPassword string
)

// loginCmd starts an admin session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as an admin",
	Long: `Log in with a username (or e-mail) and password.

Admins with two-factor authentication receive a code by e-mail; finish with
'portfolioctl verify <code>'. The password is read from stdin when --password
is not given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// verifyCmd completes a two-factor login
var verifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Submit the e-mailed verification code",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

// logoutCmd ends the session on the server and locally
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// whoamiCmd shows the logged-in admin
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in admin",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or e-mail")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	storage, err := sessionStorage()
	if err != nil {
		return err
	}
	password := loginPassword
	if password == "" {
		if password, err = readLine(cmd, "Password: "); err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := newAPIClient("").Login(ctx, loginUsername, password)
	if err != nil {
		return err
	}

	if result.RequiresTwoFactor {
		if err := storage.SetItem(pendingTempTokenKey, result.TempToken); err != nil {
			return err
		}
		printf(cmd, "Verification code sent. Run: portfolioctl verify <code>\n")
		return nil
	}
	return storeSession(cmd, storage, result)
}

func runVerify(cmd *cobra.Command, args []string) error {
	storage, err := sessionStorage()
	if err != nil {
		return err
	}
	tempToken, ok, err := storage.GetItem(pendingTempTokenKey)
	if err != nil {
		return err
	}
	if !ok || tempToken == "" {
		return errors.New("no pending login, run: portfolioctl login")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := newAPIClient("").VerifyOTP(ctx, tempToken, strings.TrimSpace(args[0]))
	if err != nil {
		if challengeSpent(err) {
			_ = storage.RemoveItem(pendingTempTokenKey)
		}
		return err
	}
	if err := storage.RemoveItem(pendingTempTokenKey); err != nil {
		return err
	}
	return storeSession(cmd, storage, result)
}

// challengeSpent reports whether a failed verify left the temporary token
// unusable. A wrong code keeps it so the user can retry.
func challengeSpent(err error) bool {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusTooManyRequests {
		return true
	}
	switch strings.TrimPrefix(apiErr.Code, "ERR_") {
	case "TOKEN_EXPIRED", "TOKEN_INVALID", "OTP_EXPIRED", "OTP_ATTEMPTS_EXCEEDED", "SESSION_EXPIRED":
		return true
	}
	return false
}

func storeSession(cmd *cobra.Command, storage authstore.Storage, result *apiclient.LoginResult) error {
	if result.Token == nil || result.User == nil {
		return errors.New("server returned no session")
	}
	err := authstore.Save(storage, identity.Session{
		Token:     result.Token.AccessToken,
		User:      *result.User,
		LastLogin: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	printf(cmd, "Logged in as %s\n", result.User.Username)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	storage, err := sessionStorage()
	if err != nil {
		return err
	}
	sess, err := authstore.Load(storage)
	if err != nil {
		printf(cmd, "Not logged in\n")
		return nil
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var apiErr *apiclient.Error
	if err := newAPIClient(sess.Token).Logout(ctx); err != nil && !(errors.As(err, &apiErr) && apiErr.IsUnauthorized()) {
		log.Warn("Server logout failed, clearing local session anyway", zap.Error(err))
	}
	if err := authstore.Clear(storage); err != nil {
		return err
	}
	printf(cmd, "Logged out\n")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	storage, err := sessionStorage()
	if err != nil {
		return err
	}
	decision := authstore.Gate(storage)
	if decision.NeedsLogin {
		return errNotLoggedIn
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	me, err := newAPIClient(decision.Session.Token).Me(ctx)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			_ = authstore.Clear(storage)
			return errNotLoggedIn
		}
		return err
	}

	printf(cmd, "%s <%s>\n", me.User.Username, me.User.Email)
	if me.User.DisplayName != "" {
		printf(cmd, "Name:       %s\n", me.User.DisplayName)
	}
	printf(cmd, "Two-factor: %t\n", me.User.TwoFactorEnabled)
	printf(cmd, "Last login: %s\n", me.LastLogin.Format(time.RFC3339))
	return nil
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
