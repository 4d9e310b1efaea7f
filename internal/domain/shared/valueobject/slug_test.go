package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title", "Hello World", "hello-world"},
		{"accents folded", "Café Déjà Vu", "cafe-deja-vu"},
		{"punctuation collapsed", "Go 1.25: What's New?!", "go-1-25-what-s-new"},
		{"leading and trailing separators", "  --Rust vs Go--  ", "rust-vs-go"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugify_TruncatesLongTitles(t *testing.T) {
	s := Slugify(strings.Repeat("word ", 60))
	assert.LessOrEqual(t, len(s), maxSlugLength)
	assert.False(t, strings.HasSuffix(s, "-"))
	assert.True(t, IsValidSlug(s))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("my-first-post"))
	assert.True(t, IsValidSlug("post2"))
	assert.False(t, IsValidSlug("My-Post"))
	assert.False(t, IsValidSlug("double--dash"))
	assert.False(t, IsValidSlug("-leading"))
	assert.False(t, IsValidSlug(""))
}
