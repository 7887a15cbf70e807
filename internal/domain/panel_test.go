package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange_Exact(t *testing.T) {
	assert.Equal(t, 10.0, PercentChange(100, 110))
	assert.Equal(t, -50.0, PercentChange(100, 50))
	assert.Equal(t, 0.0, PercentChange(42, 42))
}

func TestPercentChange_MissingInputs(t *testing.T) {
	assert.True(t, math.IsNaN(PercentChange(math.NaN(), 110)))
	assert.True(t, math.IsNaN(PercentChange(100, math.NaN())))
	// open cero: la fórmula dividiría por cero
	assert.True(t, math.IsNaN(PercentChange(0, 110)))
}

func TestParseDay_Formats(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2024-01-02",
		"2024-01-02T15:04:05Z",
		"2024-01-02T15:04:05.000000Z",
		"2024-01-02 15:04:05",
	} {
		got, err := ParseDay(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "debe truncar %q al día UTC", input)
	}
}

func TestParseDay_Unrecognized(t *testing.T) {
	_, err := ParseDay("01/02/2024")
	assert.Error(t, err)

	_, err = ParseDay("")
	assert.Error(t, err)
}

func TestDay_Truncates(t *testing.T) {
	in := time.Date(2024, 6, 15, 23, 59, 59, 123, time.FixedZone("CET", 3600))
	got := Day(in)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestLabeledRow_Feature(t *testing.T) {
	row := LabeledRow{
		MergedRow: MergedRow{
			Open: 1, High: 2, Low: 3, Close: 4, Volume: 5,
			Sentiment: 0.25, PercentChange: 300,
		},
	}

	for name, want := range map[string]float64{
		"Open": 1, "High": 2, "Low": 3, "Close": 4, "Volume": 5,
		"sentiment": 0.25, "percent_change": 300,
	} {
		got, ok := row.Feature(name)
		require.True(t, ok, "feature %q", name)
		assert.Equal(t, want, got)
	}

	_, ok := row.Feature("Target")
	assert.False(t, ok, "Target no es una feature")
}
