package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwaylabs/turnstile/model"
)

func TestParseReadings(t *testing.T) {
	content := `C/A,UNIT,SCP,STATION,LINENAME,DIVISION,DATE,TIME,DESC,ENTRIES,EXITS
A002,R051,02-00-00,59 ST ,NQR456W,BMT,12/29/2018,08:00:00,REGULAR,6839270,2318066
A002,R051,02-00-00, 59 ST,NQR456W,BMT,12/29/2018,12:00:00,REGULAR,6839328,2318120
`

	readings, err := ParseReadings(bytes.NewBufferString(content))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	// Header padding and cell whitespace are both trimmed.
	assert.Equal(t, model.RawReading{
		ControlArea: "A002",
		Unit:        "R051",
		SCP:         "02-00-00",
		Station:     "59 ST",
		LineName:    "NQR456W",
		Division:    "BMT",
		Date:        "12/29/2018",
		Time:        "08:00:00",
		Desc:        "REGULAR",
		Entries:     6839270,
		Exits:       2318066,
	}, readings[0])
	assert.Equal(t, "59 ST", readings[1].Station)
	assert.Equal(t, int64(6839328), readings[1].Entries)

	assert.Equal(t, "A002_R051_02-00-00_59 ST", readings[0].TurnstileID())
}

func TestParseReadingsSchemaMismatch(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{
			"missing EXITS",
			`C/A,UNIT,SCP,STATION,LINENAME,DIVISION,DATE,TIME,DESC,ENTRIES
A002,R051,02-00-00,59 ST,NQR456W,BMT,12/29/2018,08:00:00,REGULAR,6839270`,
		},
		{
			"extra column",
			`C/A,UNIT,SCP,STATION,LINENAME,DIVISION,DATE,TIME,DESC,ENTRIES,EXITS,EXTRA
A002,R051,02-00-00,59 ST,NQR456W,BMT,12/29/2018,08:00:00,REGULAR,6839270,2318066,x`,
		},
		{
			"renamed column",
			`CA,UNIT,SCP,STATION,LINENAME,DIVISION,DATE,TIME,DESC,ENTRIES,EXITS
A002,R051,02-00-00,59 ST,NQR456W,BMT,12/29/2018,08:00:00,REGULAR,6839270,2318066`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReadings(bytes.NewBufferString(tc.content))
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestParseReadingsBadCounter(t *testing.T) {
	content := `C/A,UNIT,SCP,STATION,LINENAME,DIVISION,DATE,TIME,DESC,ENTRIES,EXITS
A002,R051,02-00-00,59 ST,NQR456W,BMT,12/29/2018,08:00:00,REGULAR,not-a-number,2318066`

	_, err := ParseReadings(bytes.NewBufferString(content))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchemaMismatch)
}
