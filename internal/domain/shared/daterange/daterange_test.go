package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

func day(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, in, out int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(day(in), day(out))
	require.NoError(t, err)
	return dr
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := daterange.New(day(10), day(10))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	_, err = daterange.New(day(12), day(10))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, mustRange(t, 10, 11).Nights())
	assert.Equal(t, 2, mustRange(t, 10, 12).Nights())
}

func TestNewTruncatesToMidnight(t *testing.T) {
	// a late check-in and an early check-out still span two nights
	dr, err := daterange.New(day(10).Add(22*time.Hour), day(12).Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, day(10), dr.CheckIn)
	assert.Equal(t, day(12), dr.CheckOut)
	assert.Equal(t, 2, dr.Nights())

	// clock components on the same calendar day collapse to an empty range
	_, err = daterange.New(day(10).Add(10*time.Hour), day(10).Add(18*time.Hour))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	est := time.FixedZone("EST", -5*60*60)
	dr, err = daterange.New(
		time.Date(2026, time.July, 9, 19, 0, 0, 0, est), // Jul 10 00:00 UTC
		day(11),
	)
	require.NoError(t, err)
	assert.Equal(t, day(10), dr.CheckIn)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base := mustRange(t, 10, 12)

	// back-to-back stays share an endpoint but never overlap
	assert.False(t, base.Overlaps(mustRange(t, 12, 14)))
	assert.False(t, base.Overlaps(mustRange(t, 8, 10)))

	assert.True(t, base.Overlaps(mustRange(t, 11, 13)))
	assert.True(t, base.Overlaps(mustRange(t, 9, 11)))
	assert.True(t, base.Overlaps(mustRange(t, 10, 12)))
	assert.True(t, base.Overlaps(mustRange(t, 9, 14)))
}

func TestContains(t *testing.T) {
	outer := mustRange(t, 1, 31)
	assert.True(t, outer.Contains(mustRange(t, 10, 12)))
	assert.True(t, outer.Contains(mustRange(t, 1, 31)))
	assert.False(t, mustRange(t, 10, 12).Contains(outer))
}
