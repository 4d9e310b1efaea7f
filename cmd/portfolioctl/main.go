// Command portfolioctl is the admin and site-generation CLI for the portfolio backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/portfolio/backend/internal/client/apiclient"
	"github.com/portfolio/backend/internal/client/authstore"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL   string
	sessionFile string
	verbose     bool
	timeout     time.Duration

	log = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Manage the portfolio site from the command line",
	Long: `portfolioctl talks to the portfolio API for admin sessions and to the
database for imports, seeding and build-time documents.

Session commands (login, verify, logout, whoami) use --server.
Site commands (admin, content, sitemap, rss, ogimage, seed) read the same
configuration as the server (config.toml, .env, PORTFOLIO_* variables).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	defaultServer := os.Getenv("PORTFOLIO_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API base URL (or set PORTFOLIO_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file (default: <user config dir>/portfolio/session.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(loginCmd, verifyCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(adminCmd, contentCmd, sitemapCmd, rssCmd, ogimageCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func sessionStorage() (*authstore.FileStorage, error) {
	path := sessionFile
	if path == "" {
		var err error
		if path, err = authstore.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return authstore.NewFileStorage(path), nil
}

func newAPIClient(token string) *apiclient.Client {
	opts := []apiclient.Option{apiclient.WithUserAgent("portfolioctl")}
	if token != "" {
		opts = append(opts, apiclient.WithToken(token))
	}
	return apiclient.New(serverURL, opts...)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
