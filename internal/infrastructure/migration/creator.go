package migration

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"time"
)

// versionLayout sorts lexically in apply order
const versionLayout = "20060102150405"

var migrationTemplate = template.Must(template.New("migration").Parse(
	`-- Migration: {{.File.Name}}{{if .Down}} (Rollback){{end}}
-- Created: {{.File.Timestamp}}
-- Description: {{if .Down}}Rollback for {{end}}{{.File.Description}}

-- Write the {{if .Down}}DOWN{{else}}UP{{end}} migration here. Both directions must
-- run inside golang-migrate's transaction, so avoid CREATE INDEX CONCURRENTLY.

`))

var (
	nonNameChars = regexp.MustCompile(`[^a-z0-9 _-]+`)
	separators   = regexp.MustCompile(`[ _-]+`)
)

// MigrationFile describes a freshly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair named <version>_<name> into
// migrationsDir, creating the directory when needed. Existing files are
// never overwritten.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now().UTC()
	base := filepath.Join(migrationsDir, now.Format(versionLayout)+"_"+slug)
	mf := &MigrationFile{
		Version:     now.Format(versionLayout),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeMigration(mf.UpPath, mf, false); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeMigration(mf.DownPath, mf, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeMigration(path string, mf *MigrationFile, down bool) error {
	var buf bytes.Buffer
	if err := migrationTemplate.Execute(&buf, struct {
		File *MigrationFile
		Down bool
	}{mf, down}); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// sanitizeName lowercases name, drops anything but letters, digits and
// separators, and joins the words with single underscores
func sanitizeName(name string) string {
	s := nonNameChars.ReplaceAllString(strings.ToLower(name), "")
	s = separators.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ListMigrations returns the base name of every *.up.sql in the root of fsys,
// in version order
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var list []string
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if ok && base != "" && !entry.IsDir() {
			list = append(list, base)
		}
	}
	slices.Sort(list)
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// ListMigrationsDir lists the migrations in a directory on disk. A missing
// directory yields an empty list.
func ListMigrationsDir(migrationsDir string) ([]string, error) {
	if _, err := os.Stat(migrationsDir); errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return ListMigrations(os.DirFS(migrationsDir))
}
