package storefront

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editor"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
)

var markdownPolicy = bluemonday.UGCPolicy()

var funcs = template.FuncMap{
	"money":   money,
	"stars":   stars,
	"isFalse": isFalse,
}

func money(v any) string {
	switch p := v.(type) {
	case float64:
		return decimal.NewFromFloat(p).StringFixed(2)
	case string:
		if d, err := decimal.NewFromString(p); err == nil {
			return d.StringFixed(2)
		}
		return p
	default:
		return ""
	}
}

func stars(v any) string {
	n := 0
	switch r := v.(type) {
	case float64:
		n = int(r)
	case int:
		n = r
	}
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func isFalse(v any) bool {
	b, ok := v.(bool)
	return ok && !b
}

// markdownHTML converts long-form text to sanitized HTML.
func markdownHTML(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized
}

// withMarkdown adds bodyHTML rendered from the about content.
func withMarkdown(rec content.Record) content.Record {
	out := make(content.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	if body, ok := rec["content"].(string); ok {
		out["bodyHTML"] = markdownHTML(body)
	}
	return out
}

type dayHours struct {
	Label string
	Hours string
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// openingHours is the record the opening-hours editor works on.
func openingHours(contact content.Record) content.Record {
	if hours, ok := contact["openingHours"].(map[string]any); ok {
		return content.Record(hours)
	}
	return content.Record{}
}

func hoursView(contact content.Record) content.Record {
	hours := openingHours(contact)
	days := make([]dayHours, 0, len(weekdays))
	for _, day := range weekdays {
		value, _ := hours[day].(string)
		days = append(days, dayHours{Label: editor.Label(day), Hours: value})
	}
	return content.Record{"days": days}
}

type socialLink struct {
	Label string
	URL   string
}

var socialNetworks = []string{"facebook", "instagram", "twitter", "youtube", "linkedin"}

func socialView(rec content.Record) content.Record {
	links := make([]socialLink, 0, len(socialNetworks))
	for _, network := range socialNetworks {
		if url, ok := rec[network].(string); ok && strings.TrimSpace(url) != "" {
			links = append(links, socialLink{Label: editor.Label(network), URL: url})
		}
	}
	return content.Record{"links": links}
}
