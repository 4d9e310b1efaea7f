package main

import (
	"errors"
	"fmt"

	"github.com/portfolio/backend/internal/domain/identity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminUsername    string
	adminEmail       string
	adminPassword    string
	adminDisplayName string
	adminTwoFactor   bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account directly in the database.

The password is read from stdin when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: runAdminCreate,
}

func init() {
	f := adminCreateCmd.Flags()
	f.StringVar(&adminUsername, "username", "", "Username (3-50 characters)")
	f.StringVar(&adminEmail, "email", "", "E-mail address, also used for verification codes")
	f.StringVar(&adminPassword, "password", "", "Password (read from stdin when empty)")
	f.StringVar(&adminDisplayName, "display-name", "", "Display name")
	f.BoolVar(&adminTwoFactor, "two-factor", false, "Require an e-mailed code at login")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	password := adminPassword
	if password == "" {
		var err error
		if password, err = readLine(cmd, "Password: "); err != nil {
			return err
		}
	}

	admin, err := identity.NewAdmin(adminUsername, adminEmail, password)
	if err != nil {
		return err
	}
	if adminDisplayName != "" {
		if err := admin.SetDisplayName(adminDisplayName); err != nil {
			return err
		}
	}
	if adminTwoFactor {
		if err := admin.EnableTwoFactor(); err != nil {
			return err
		}
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	taken, err := b.admins.ExistsByUsername(ctx, admin.Username)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("username %q is already taken", admin.Username)
	}
	if taken, err = b.admins.ExistsByEmail(ctx, admin.Email); err != nil {
		return err
	}
	if taken {
		return errors.New("e-mail is already registered")
	}

	if err := b.admins.Create(ctx, admin); err != nil {
		return err
	}
	log.Info("Admin created", zap.String("admin_id", admin.ID.String()), zap.String("username", admin.Username))
	printf(cmd, "Created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}
