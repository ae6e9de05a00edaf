package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaylabs/turnstile/testutil"
)

func TestParse(t *testing.T) {
	html := testutil.BuildCatalogHTML([][2]string{
		{"Data Dictionary", "resources/nyct/turnstile/ts_Field_Description.txt"},
		{"Saturday, December 29, 2018", "data/nyct/turnstile/turnstile_181229.txt"},
		{"Saturday, December 22, 2018", "data/nyct/turnstile/turnstile_181222.txt"},
		{"About", "about.html"},
	})

	entries, err := Parse(html, nil)
	require.NoError(t, err)

	// Only the two anchors with the data path marker survive, in
	// document order.
	require.Len(t, entries, 2)
	assert.Equal(t,
		"http://web.mta.info/developers/data/nyct/turnstile/turnstile_181229.txt",
		entries[0].URL)
	assert.Equal(t, time.Date(2018, 12, 29, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t,
		"http://web.mta.info/developers/data/nyct/turnstile/turnstile_181222.txt",
		entries[1].URL)
	assert.Equal(t, time.Date(2018, 12, 22, 0, 0, 0, 0, time.UTC), entries[1].Date)
}

func TestParseNoMatchingLinks(t *testing.T) {
	html := testutil.BuildCatalogHTML([][2]string{
		{"About", "about.html"},
		{"Developers", "developers.html"},
	})

	_, err := Parse(html, nil)
	assert.ErrorIs(t, err, ErrNoMatchingLinks)
}

func TestParseUnparseableDate(t *testing.T) {
	html := testutil.BuildCatalogHTML([][2]string{
		{"coming soon", "data/nyct/turnstile/turnstile_190105.txt"},
		{"Saturday, December 29, 2018", "data/nyct/turnstile/turnstile_181229.txt"},
	})

	entries, err := Parse(html, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Unparseable dates become the zero-time sentinel; the entry is
	// kept but can never match a date range.
	assert.True(t, entries[0].Date.IsZero())
	assert.False(t, entries[1].Date.IsZero())
}

func TestParseDateLayouts(t *testing.T) {
	for _, tc := range []struct {
		text string
		want time.Time
	}{
		{"Saturday, January 5, 2019", time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"Saturday, January 05, 2019", time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"January 5, 2019", time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"01/05/2019", time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC)},
	} {
		date, err := parseLinkDate(tc.text)
		assert.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, date, tc.text)
	}

	_, err := parseLinkDate("next saturday")
	assert.Error(t, err)
}
