package persistence

import (
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/shared"
)

func contentFilter(f shared.Filter, tag string, publishedOnly bool) content.PostFilter {
	return content.PostFilter{Filter: f, Tag: tag, PublishedOnly: publishedOnly}
}
