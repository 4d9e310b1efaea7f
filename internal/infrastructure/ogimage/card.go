package ogimage

import (
	"bytes"
	"html/template"
	"strings"
)

// Card is the content drawn on an Open Graph preview image
type Card struct {
	Title    string
	Subtitle string
	SiteName string
	Tags     []string
	// Accent is a CSS color for the top bar. Defaults to #2563eb.
	Accent string
}

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  html, body { margin: 0; padding: 0; }
  body {
    width: {{.Width}}px; height: {{.Height}}px;
    display: flex; flex-direction: column; justify-content: space-between;
    box-sizing: border-box; padding: 72px 80px;
    background: #0f172a; color: #f8fafc;
    font-family: "Inter", "Helvetica Neue", Arial, sans-serif;
    border-top: 16px solid {{.Accent}};
  }
  h1 { font-size: {{.TitleSize}}px; line-height: 1.15; margin: 0; }
  p { font-size: 32px; color: #cbd5e1; margin: 24px 0 0; }
  footer { display: flex; justify-content: space-between; align-items: center; font-size: 28px; }
  .tags span { margin-left: 16px; color: {{.Accent}}; }
</style>
</head>
<body>
  <div>
    <h1>{{.Title}}</h1>
    {{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
  </div>
  <footer>
    <strong>{{.SiteName}}</strong>
    <div class="tags">{{range .Tags}}<span>#{{.}}</span>{{end}}</div>
  </footer>
</body>
</html>`))

type cardView struct {
	Card
	Width     int
	Height    int
	TitleSize int
	Accent    template.CSS
}

// HTML renders the card markup for a viewport of the given size
func (c Card) HTML(width, height int) (string, error) {
	if strings.TrimSpace(c.Title) == "" {
		return "", NewRenderError(ErrCodeInvalidCard, "card title is required", nil)
	}
	view := cardView{
		Card:      c,
		Width:     width,
		Height:    height,
		TitleSize: titleSize(c.Title),
		Accent:    template.CSS(safeColor(c.Accent)),
	}
	if len(view.Tags) > 3 {
		view.Tags = view.Tags[:3]
	}
	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeInvalidCard, "failed to render card template", err)
	}
	return buf.String(), nil
}

// titleSize shrinks long titles so they fit in three lines
func titleSize(title string) int {
	switch n := len([]rune(title)); {
	case n <= 40:
		return 72
	case n <= 80:
		return 60
	default:
		return 48
	}
}

// safeColor only lets hex colors through to the stylesheet
func safeColor(c string) string {
	c = strings.TrimSpace(c)
	if len(c) != 4 && len(c) != 7 || !strings.HasPrefix(c, "#") {
		return defaultAccent
	}
	for _, r := range c[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return defaultAccent
		}
	}
	return c
}

const defaultAccent = "#2563eb"
