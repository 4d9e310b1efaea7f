package feed

import (
	"encoding/xml"
	"time"
)

// AtomNamespace is used for the channel's self link
const AtomNamespace = "http://www.w3.org/2005/Atom"

// Channel describes the feed itself
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	SelfURL     string
	BuiltAt     time.Time
}

// Item is one post in the feed
type Item struct {
	Title       string
	Link        string
	GUID        string
	PublishedAt time.Time
	Description string
	Categories  []string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// RSS renders an RSS 2.0 document. Items are written in the order given;
// callers pass them newest first.
func RSS(ch Channel, items []Item) ([]byte, error) {
	doc := rssDoc{
		Version: "2.0",
		AtomNS:  AtomNamespace,
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          ch.Link,
			Description:   ch.Description,
			Language:      ch.Language,
			LastBuildDate: ch.BuiltAt.UTC().Format(time.RFC1123Z),
			AtomLink:      atomLink{Href: ch.SelfURL, Rel: "self", Type: "application/rss+xml"},
			Items:         make([]rssItem, 0, len(items)),
		},
	}
	for _, it := range items {
		guid := it.GUID
		if guid == "" {
			guid = it.Link
		}
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       it.Title,
			Link:        it.Link,
			GUID:        rssGUID{Value: guid, IsPermaLink: guid == it.Link},
			PubDate:     it.PublishedAt.UTC().Format(time.RFC1123Z),
			Description: it.Description,
			Categories:  it.Categories,
		})
	}
	return marshal(doc)
}
