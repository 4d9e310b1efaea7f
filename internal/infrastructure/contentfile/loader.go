// Package contentfile reads posts and projects from a directory of YAML files
// and keeps the database in step with it.
//
// Layout:
//
//	<dir>/posts/*.yaml
//	<dir>/projects/*.yaml
//
// A file may hold several YAML documents separated by "---".
package contentfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appcontent "github.com/portfolio/backend/internal/application/content"
	"gopkg.in/yaml.v3"
)

const (
	postsDir    = "posts"
	projectsDir = "projects"
)

type postFile struct {
	Slug        string     `yaml:"slug"`
	Title       string     `yaml:"title"`
	Summary     string     `yaml:"summary"`
	Body        string     `yaml:"body"`
	Tags        []string   `yaml:"tags"`
	CoverImage  string     `yaml:"cover_image"`
	Draft       bool       `yaml:"draft"`
	PublishedAt *time.Time `yaml:"published_at"`
}

type projectFile struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	TechStack   []string `yaml:"tech_stack"`
	RepoURL     string   `yaml:"repo_url"`
	LiveURL     string   `yaml:"live_url"`
	ImageURL    string   `yaml:"image_url"`
	Featured    bool     `yaml:"featured"`
	SortOrder   int      `yaml:"sort_order"`
}

// Bundle is everything found in a content directory
type Bundle struct {
	Posts    []appcontent.ImportPost
	Projects []appcontent.ImportProject
}

// Load reads every YAML file under dir. Missing subdirectories are treated as empty.
func Load(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}

	b := &Bundle{}
	err = eachDocument(filepath.Join(dir, postsDir), func(dec *yaml.Decoder, path string) error {
		var f postFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		b.Posts = append(b.Posts, appcontent.ImportPost(f))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachDocument(filepath.Join(dir, projectsDir), func(dec *yaml.Decoder, path string) error {
		var f projectFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		b.Projects = append(b.Projects, appcontent.ImportProject(f))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// eachDocument calls decode once per YAML document in every file of dir, in name order
func eachDocument(dir string, decode func(dec *yaml.Decoder, path string) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := decodeFile(path, decode); err != nil {
			return err
		}
	}
	return nil
}

func decodeFile(path string, decode func(dec *yaml.Decoder, path string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	for {
		err := decode(dec, path)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return (ext == ".yaml" || ext == ".yml") && !strings.HasPrefix(name, ".")
}
