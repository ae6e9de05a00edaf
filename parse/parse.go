package parse

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"
)

func init() {
	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes in older snapshot files. The BOM reader strips unicode
	// BOMs if present. Header names are trimmed before tag matching;
	// the MTA files pad some header cells with trailing whitespace.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
	gocsv.SetHeaderNormalizer(strings.TrimSpace)
}
