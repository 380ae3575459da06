package slot_test

import (
	"testing"
	"time"

	"github.com/tracepace/coach/internal/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceDistanceNormalization(t *testing.T) {
	d, ok := slot.Get(slot.RaceDistance)
	require.True(t, ok)

	v, err := d.Normalize("Half Marathon")
	require.NoError(t, err)
	assert.Equal(t, "half_marathon", v)
	assert.NoError(t, d.Validate(v))

	_, err = d.Normalize("banana")
	assert.Error(t, err)
}

func TestTargetTimeNormalization(t *testing.T) {
	d, ok := slot.Get(slot.TargetTime)
	require.True(t, ok)

	v, err := d.Normalize("3:30:00")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour+30*time.Minute, v)
	assert.NoError(t, d.Validate(v))

	v, err = d.Normalize("sub-3")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, v)

	v, err = d.Normalize("3:15")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour+15*time.Minute, v)

	_, err = d.Normalize("fast")
	assert.Error(t, err)
}

func TestWeeklyMileageValidation(t *testing.T) {
	d, ok := slot.Get(slot.WeeklyMileage)
	require.True(t, ok)

	v, err := d.Normalize("30 miles")
	require.NoError(t, err)
	assert.NoError(t, d.Validate(v))

	v2, err := d.Normalize("55 mpw")
	require.NoError(t, err)
	assert.InDelta(t, v.(float64)/30*55, v2, 1.0)

	_, err = d.Normalize("55")
	assert.Error(t, err, "a bare number with no unit must be rejected unless explicitly prompted for")

	explicit, err := slot.NormalizeMileageExplicit("55")
	require.NoError(t, err)
	assert.NoError(t, d.Validate(explicit))

	assert.Error(t, d.Validate(-5.0))
}

func TestRaceDateNormalization(t *testing.T) {
	d, ok := slot.Get(slot.RaceDate)
	require.True(t, ok)

	v, err := d.Normalize("2026-10-12")
	require.NoError(t, err)
	assert.NoError(t, d.Validate(v))
}
