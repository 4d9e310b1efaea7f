// Package feed renders sitemaps.org 0.9 sitemaps and RSS 2.0 channels.
package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// SitemapNamespace is the sitemaps.org 0.9 schema
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies accepted by the sitemap schema
const (
	ChangeDaily   = "daily"
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
	ChangeYearly  = "yearly"
)

// URL is one sitemap entry. A zero LastMod omits the element.
type URL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders the urlset document
func Sitemap(urls []URL) ([]byte, error) {
	set := urlSet{XMLNS: SitemapNamespace, URLs: make([]sitemapURL, 0, len(urls))}
	for _, u := range urls {
		if u.Priority < 0 || u.Priority > 1 {
			return nil, fmt.Errorf("sitemap priority for %s must be within [0,1], got %v", u.Loc, u.Priority)
		}
		entry := sitemapURL{Loc: u.Loc, ChangeFreq: u.ChangeFreq}
		if !u.LastMod.IsZero() {
			entry.LastMod = u.LastMod.UTC().Format("2006-01-02")
		}
		if u.Priority > 0 {
			entry.Priority = strconv.FormatFloat(u.Priority, 'f', 1, 64)
		}
		set.URLs = append(set.URLs, entry)
	}
	return marshal(set)
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
