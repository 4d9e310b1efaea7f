package main

import (
	"errors"

	"github.com/portfolio/backend/internal/infrastructure/contentfile"
	"github.com/spf13/cobra"
)

var errMissingContentDir = errors.New("no content directory, pass one or set content.dir")

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage posts and projects",
}

var contentImportCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import posts and projects from YAML files",
	Long: `Import every *.yaml and *.yml file under dir (default: content.dir).

Documents are upserted by slug, so running the import again updates
existing entries instead of duplicating them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContentImport,
}

func init() {
	contentCmd.AddCommand(contentImportCmd)
}

func runContentImport(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	dir := b.cfg.Content.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errMissingContentDir
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := contentfile.Sync(ctx, dir, b.content)
	if err != nil {
		return err
	}
	printf(cmd, "Posts:    %d created, %d updated\n", result.PostsCreated, result.PostsUpdated)
	printf(cmd, "Projects: %d created, %d updated\n", result.ProjectsCreated, result.ProjectsUpdated)
	return nil
}
