package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_Period(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		tf         Timeframe
		start, end string
		ok         bool
	}{
		{tf: TimeframeThisMonth, start: "2024-03-01", end: "2024-03-31", ok: true},
		{tf: TimeframeLastMonth, start: "2024-02-01", end: "2024-02-29", ok: true},
		{tf: TimeframeThisYear, start: "2024-01-01", end: "2024-12-31", ok: true},
		{tf: TimeframeLast30Days, start: "2024-02-15", end: "2024-03-15", ok: true},
		{tf: TimeframeAll},
		{tf: TimeframeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			p, ok := tt.tf.Period(now)
			require.Equal(t, tt.ok, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.start, FormatDate(p.Start))
			assert.Equal(t, tt.end, FormatDate(p.End))
		})
	}
}

func TestParseRange(t *testing.T) {
	p, err := parseRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", FormatDate(p.End))

	_, err = parseRange("2024-02-01", "2024-01-01")
	assert.Error(t, err)

	_, err = parseRange("01/01/2024", "2024-01-31")
	assert.Error(t, err)
}
