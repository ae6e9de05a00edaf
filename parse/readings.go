package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/subwaylabs/turnstile/model"
)

// ErrSchemaMismatch means a snapshot file's columns don't form the exact
// MTA turnstile schema. Everything downstream assumes that shape, so this
// is fatal for the file.
var ErrSchemaMismatch = errors.New("columns do not match the MTA turnstile schema")

// Column set of the turnstile snapshot files. The check is presence plus
// count, not position; column order has varied over the years.
var readingColumns = []string{
	"C/A", "UNIT", "SCP", "STATION", "LINENAME", "DIVISION",
	"DATE", "TIME", "DESC", "ENTRIES", "EXITS",
}

type readingCSV struct {
	ControlArea string `csv:"C/A"`
	Unit        string `csv:"UNIT"`
	SCP         string `csv:"SCP"`
	Station     string `csv:"STATION"`
	LineName    string `csv:"LINENAME"`
	Division    string `csv:"DIVISION"`
	Date        string `csv:"DATE"`
	Time        string `csv:"TIME"`
	Desc        string `csv:"DESC"`
	Entries     string `csv:"ENTRIES"`
	Exits       string `csv:"EXITS"`
}

// ParseReadings decodes one turnstile snapshot file. All text cells are
// trimmed of surrounding whitespace. The cumulative counters must be
// integers; a malformed counter fails the whole file, which callers treat
// as a skippable per-source failure.
func ParseReadings(data io.Reader) ([]model.RawReading, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	if err := checkReadingHeader(buf); err != nil {
		return nil, err
	}

	readings := []model.RawReading{}
	i := -1
	err = gocsv.UnmarshalToCallbackWithError(bytes.NewReader(buf), func(row *readingCSV) error {
		i += 1

		entries, err := strconv.ParseInt(strings.TrimSpace(row.Entries), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing ENTRIES (row %d)", i+1)
		}
		exits, err := strconv.ParseInt(strings.TrimSpace(row.Exits), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing EXITS (row %d)", i+1)
		}

		readings = append(readings, model.RawReading{
			ControlArea: strings.TrimSpace(row.ControlArea),
			Unit:        strings.TrimSpace(row.Unit),
			SCP:         strings.TrimSpace(row.SCP),
			Station:     strings.TrimSpace(row.Station),
			LineName:    strings.TrimSpace(row.LineName),
			Division:    strings.TrimSpace(row.Division),
			Date:        strings.TrimSpace(row.Date),
			Time:        strings.TrimSpace(row.Time),
			Desc:        strings.TrimSpace(row.Desc),
			Entries:     entries,
			Exits:       exits,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling turnstile csv")
	}

	return readings, nil
}

func checkReadingHeader(buf []byte) error {
	r := csv.NewReader(bom.NewReader(bytes.NewReader(buf)))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	if len(header) != len(readingColumns) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(header), len(readingColumns))
	}

	seen := map[string]bool{}
	for _, name := range header {
		seen[strings.TrimSpace(name)] = true
	}
	for _, name := range readingColumns {
		if !seen[name] {
			return fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
		}
	}

	return nil
}
