package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end time.Time) TimeRange {
	t.Helper()
	rng, err := NewTimeRange(start, end)
	require.NoError(t, err)
	return rng
}

func TestNewTimeRange(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		rng, err := NewTimeRange(day.Add(10*time.Hour), day.Add(12*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, rng.Duration())
	})

	t.Run("end equal to start", func(t *testing.T) {
		_, err := NewTimeRange(day, day)
		var invalid *InvalidRangeError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewTimeRange(day.Add(2*time.Hour), day)
		var invalid *InvalidRangeError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("unset instants", func(t *testing.T) {
		_, err := NewTimeRange(time.Time{}, day)
		require.ErrorIs(t, err, ErrMissingTimezone)

		_, err = NewTimeRange(day, time.Time{})
		require.ErrorIs(t, err, ErrMissingTimezone)
	})
}

func TestOverlapSymmetry(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	h := func(from, to int) TimeRange {
		return mustRange(t, day.Add(time.Duration(from)*time.Hour), day.Add(time.Duration(to)*time.Hour))
	}

	cases := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{"partial overlap", h(10, 12), h(11, 13), true},
		{"containment", h(10, 14), h(11, 12), true},
		{"identical", h(10, 12), h(10, 12), true},
		{"adjacent", h(10, 12), h(12, 13), false},
		{"disjoint", h(10, 12), h(9, 10), false},
		{"far apart", h(1, 2), h(20, 22), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestContainsInclusive(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	rng := mustRange(t, day.Add(10*time.Hour), day.Add(12*time.Hour))

	assert.True(t, rng.Contains(day.Add(10*time.Hour)))
	assert.True(t, rng.Contains(day.Add(11*time.Hour)))
	assert.True(t, rng.Contains(day.Add(12*time.Hour)))
	assert.False(t, rng.Contains(day.Add(12*time.Hour).Add(time.Second)))
	assert.False(t, rng.Contains(day.Add(10*time.Hour).Add(-time.Second)))
}

func TestEqualAcrossZones(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	utcStart := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	utcEnd := utcStart.Add(2 * time.Hour)

	a := mustRange(t, utcStart, utcEnd)
	b := mustRange(t, utcStart.In(loc), utcEnd.In(loc))

	assert.True(t, a.Equal(b))
}
