package controller_test

import (
	"testing"

	"github.com/tracepace/coach/internal/controller"
	"github.com/tracepace/coach/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSingleQuestion(t *testing.T) {
	ok := controller.Turn{Decision: controller.DecisionAskOne, ResponseText: "What's the race date?"}
	assert.NoError(t, controller.ValidateSingleQuestion(ok))

	compound := controller.Turn{Decision: controller.DecisionAskOne, ResponseText: "What's the race date? And the distance?"}
	require.ErrorIs(t, controller.ValidateSingleQuestion(compound), controller.ErrMultipleQuestions)
}

func TestValidateNoAdvice(t *testing.T) {
	chatty := controller.Turn{Decision: controller.DecisionChat, ResponseText: "You should run easy pace tomorrow."}
	require.ErrorIs(t, controller.ValidateNoAdvice(chatty), controller.ErrAdviceWithoutTool)

	fine := controller.Turn{Decision: controller.DecisionChat, ResponseText: "Sounds good!"}
	assert.NoError(t, controller.ValidateNoAdvice(fine))

	duringExecute := controller.Turn{Decision: controller.DecisionExecuteTool, ResponseText: "You should run easy pace tomorrow."}
	assert.NoError(t, controller.ValidateNoAdvice(duringExecute))
}

func TestValidateNoChatty(t *testing.T) {
	long := controller.Turn{Decision: controller.DecisionExecuteTool, ResponseText: stringOfLen(500)}
	require.ErrorIs(t, controller.ValidateNoChatty(long), controller.ErrChattyToolResponse)

	short := controller.Turn{Decision: controller.DecisionExecuteTool, ResponseText: "Building your plan now."}
	assert.NoError(t, controller.ValidateNoChatty(short))
}

func TestValidateExecuteImmediately(t *testing.T) {
	t1 := controller.Turn{
		Decision:            controller.DecisionAskOne,
		RequiredAttributes:  []string{"race_distance"},
		KnownSlots:          map[string]model.SlotValue{"race_distance": {Normalized: "marathon"}},
	}
	require.ErrorIs(t, controller.ValidateExecuteImmediately(t1), controller.ErrNotExecutedImmediately)

	t2 := controller.Turn{
		Decision:           controller.DecisionAskOne,
		RequiredAttributes: []string{"race_distance"},
		KnownSlots:         map[string]model.SlotValue{},
	}
	assert.NoError(t, controller.ValidateExecuteImmediately(t2))
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
