// Package catalog turns the MTA developer page into a dated table of
// turnstile snapshot URLs.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/subwaylabs/turnstile/model"
)

// ErrNoMatchingLinks means the page held no anchors pointing at turnstile
// data files. The catalog is unusable, so this is fatal.
var ErrNoMatchingLinks = errors.New("no turnstile data links found on page")

const (
	// Path fragment identifying an anchor as a turnstile data file.
	linkMarker = "data/nyct/turnstile/"

	// Hrefs on the page are relative to the developer area.
	linkBase = "http://web.mta.info/developers/"
)

// Anchor text formats seen on the page over the years.
var linkDateLayouts = []string{
	"Monday, January 2, 2006",
	"January 2, 2006",
	"01/02/2006",
}

// Parse extracts dated turnstile data links from the developer page HTML.
// Anchors whose text doesn't parse as a date are kept with a zero-time
// sentinel and a warning; date range filters must skip them.
func Parse(html []byte, logger *slog.Logger) ([]model.CatalogEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	entries := []model.CatalogEntry{}
	doc.Find("a").Each(func(i int, a *goquery.Selection) {
		href, found := a.Attr("href")
		if !found || !strings.Contains(href, linkMarker) {
			return
		}

		text := strings.TrimSpace(a.Text())
		date, err := parseLinkDate(text)
		if err != nil {
			logger.Warn("unparseable catalog link date",
				"text", text, "href", href)
		}

		entries = append(entries, model.CatalogEntry{
			Date: date,
			URL:  linkBase + href,
		})
	})

	if len(entries) == 0 {
		return nil, ErrNoMatchingLinks
	}

	return entries, nil
}

func parseLinkDate(text string) (time.Time, error) {
	for _, layout := range linkDateLayouts {
		if date, err := time.Parse(layout, text); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", text)
}
