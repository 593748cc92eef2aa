package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  TimeInterval
	}{
		{"standard", "07.30 - 10.00", TimeInterval{450, 600}},
		{"irregular spacing", "07.00- 09.30", TimeInterval{420, 570}},
		{"no spaces", "12.30-15.00", TimeInterval{750, 900}},
		{"minute defaults to zero", "13 - 14.40", TimeInterval{780, 880}},
		{"split slot", "14.10 - 15.00", TimeInterval{850, 900}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeRange(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeRangeRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"abc", "", "07.30", "ab - cd", "10.00 - 07.30", "25.00 - 26.00"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseTimeRange(input)
			require.Error(t, err)
			assert.True(t, got.IsZero(), "failed parse must not leak a usable interval")
		})
	}
}

func TestOverlapsSymmetryAndStrictness(t *testing.T) {
	a := TimeInterval{0, 100}
	b := TimeInterval{100, 200}
	c := TimeInterval{99, 200}

	assert.False(t, a.Overlaps(b), "back-to-back slots do not overlap")
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(a))
	assert.Equal(t, a.Overlaps(c), c.Overlaps(a))
}

func TestIntervalString(t *testing.T) {
	assert.Equal(t, "07.30 - 10.00", TimeInterval{450, 600}.String())
	assert.Equal(t, "14.10 - 15.00", TimeInterval{850, 900}.String())
}

func TestDayOfWeek(t *testing.T) {
	// 2025-01-06 is a Monday.
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)
	assert.Equal(t, DaySenin, DayOfWeek(monday))
	assert.Equal(t, DayMinggu, DayOfWeek(monday.AddDate(0, 0, 6)))
	assert.Equal(t, DayJumat, DayOfWeek(monday.AddDate(0, 0, 4)))
}

func TestDisplaySlotsCarrySplits(t *testing.T) {
	require.Len(t, DisplaySlots[DayRabu], 5)
	assert.Contains(t, DisplaySlots[DayRabu], TimeInterval{750, 850})
	assert.Contains(t, DisplaySlots[DayRabu], TimeInterval{850, 900})

	require.Len(t, DisplaySlots[DayJumat], 4)
	assert.Contains(t, DisplaySlots[DayJumat], TimeInterval{780, 880})
	assert.Contains(t, DisplaySlots[DayJumat], TimeInterval{880, 930})
}
