package controller

import (
	"testing"

	"github.com/tracepace/coach/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDecide_AsksForFirstMissingAttribute(t *testing.T) {
	c := &Controller{}
	classification := model.TargetClassification{
		TargetAction:       model.ActionPlanRaceBuild,
		RequiredAttributes: []string{"race_distance", "race_date"},
	}
	progress := model.Progress{KnownSlots: map[string]model.SlotValue{}}

	turn := c.decide(classification, progress, []string{"race_distance", "race_date"})

	assert.Equal(t, DecisionAskOne, turn.Decision)
	assert.Equal(t, "race_distance", turn.AskedSlot)
}

func TestDecide_ExecutesToolWhenNothingMissing(t *testing.T) {
	c := &Controller{}
	classification := model.TargetClassification{TargetAction: model.ActionPlanRaceBuild}
	progress := model.Progress{KnownSlots: map[string]model.SlotValue{}}

	turn := c.decide(classification, progress, nil)

	assert.Equal(t, DecisionExecuteTool, turn.Decision)
}

func TestDecide_ChatActionNeverAsksOrExecutes(t *testing.T) {
	c := &Controller{}
	classification := model.TargetClassification{TargetAction: model.ActionChat}
	progress := model.Progress{KnownSlots: map[string]model.SlotValue{}}

	turn := c.decide(classification, progress, nil)

	assert.Equal(t, DecisionChat, turn.Decision)
}

func TestFallbackTurn_PrefersAskOverExecuteWhenStillMissing(t *testing.T) {
	classification := model.TargetClassification{
		TargetAction:       model.ActionPlanRaceBuild,
		RequiredAttributes: []string{"race_distance"},
	}
	progress := model.Progress{KnownSlots: map[string]model.SlotValue{}}

	turn := fallbackTurn(classification, progress)

	assert.Equal(t, DecisionAskOne, turn.Decision)
	assert.Equal(t, "race_distance", turn.AskedSlot)
}

func TestFilterKnownSlotNames_DropsUnrecognizedNames(t *testing.T) {
	out := filterKnownSlotNames([]string{"race_distance", "made_up_attribute"})
	assert.Equal(t, []string{"race_distance"}, out)
}

func TestFilterKnownSlotNames_EmptyInputStaysEmpty(t *testing.T) {
	assert.Empty(t, filterKnownSlotNames(nil))
}
