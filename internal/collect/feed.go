package collect

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// adaptItem converts a gofeed entry into a RawItem. Entries without a title
// or link are dropped here, silently: both fields are identity components
// and their absence is frequent in the wild, not an error worth logging.
func adaptItem(entry *gofeed.Item, src Source) (RawItem, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		link = strings.TrimSpace(entry.GUID)
	}
	if title == "" || link == "" {
		return RawItem{}, false
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	published, hasDate := parseDate(entry)

	return RawItem{
		Title:     title,
		Link:      link,
		Summary:   summary,
		Published: published,
		HasDate:   hasDate,
		Source:    src,
	}, true
}

// parseDate tries timestamp fields in a fixed fallback order: the parsed
// published/updated times gofeed already extracted, then a lenient parse of
// the raw strings. Returns ok=false when nothing parses; the pipeline then
// treats the item as published now (documented policy: include undated
// items as freshest rather than drop them).
func parseDate(entry *gofeed.Item) (time.Time, bool) {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC(), true
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC(), true
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
