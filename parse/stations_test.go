package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaylabs/turnstile/model"
)

func TestParseStationCoords(t *testing.T) {
	content := `STATION,LATITUDE,LONGITUDE
59 ST,40.762526,-73.967967
TIMES SQ-42 ST,40.755905,-73.986504
59 ST,0.0,0.0
,1.0,1.0
`

	coords, err := ParseStationCoords(bytes.NewBufferString(content))
	require.NoError(t, err)

	// Duplicate station keeps the first row; the blank name is skipped.
	require.Len(t, coords, 2)
	assert.Equal(t, model.StationCoord{
		Station:   "59 ST",
		Latitude:  40.762526,
		Longitude: -73.967967,
	}, coords["59 ST"])
	assert.Equal(t, 40.755905, coords["TIMES SQ-42 ST"].Latitude)
}

func TestParseStationCoordsBadFloat(t *testing.T) {
	content := `STATION,LATITUDE,LONGITUDE
59 ST,north,-73.967967`

	_, err := ParseStationCoords(bytes.NewBufferString(content))
	assert.Error(t, err)
}
