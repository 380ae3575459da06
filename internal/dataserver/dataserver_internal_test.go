package dataserver

import (
	"testing"
	"time"

	"github.com/tracepace/coach/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayOf(t *testing.T) {
	wed := time.Date(2026, 8, 5, 14, 30, 0, 0, time.UTC)
	got := mondayOf(wed)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), got)

	mon := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), mondayOf(mon))
}

func TestModificationFromSlots_RequiresModifyDate(t *testing.T) {
	_, tErr := modificationFromSlots(map[string]model.SlotValue{})
	require.NotNil(t, tErr)
	assert.Equal(t, CodeInvalidDateFormat, tErr.Code)
}

func TestModificationFromSlots_MarksExplicitIntentChange(t *testing.T) {
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	known := map[string]model.SlotValue{
		"modify_date": {Normalized: date},
		"new_intent":  {Normalized: model.IntentQuality},
	}

	mod, tErr := modificationFromSlots(known)
	require.Nil(t, tErr)
	assert.Equal(t, date, mod.Date)
	assert.Equal(t, model.IntentQuality, mod.NewIntent)
	assert.True(t, mod.ExplicitIntentChange)
}

func TestModificationFromSlots_NoIntentChangeWithoutNewIntent(t *testing.T) {
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	known := map[string]model.SlotValue{"modify_date": {Normalized: date}}

	mod, tErr := modificationFromSlots(known)
	require.Nil(t, tErr)
	assert.False(t, mod.ExplicitIntentChange)
}
