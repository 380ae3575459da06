package controller

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tracepace/coach/internal/model"
)

// Decision is the DECIDE stage's output: which of the three response
// paths this turn takes.
type Decision string

const (
	DecisionAskOne      Decision = "ask_one"
	DecisionExecuteTool Decision = "execute_tool"
	DecisionChat        Decision = "chat"
)

// Turn is the draft response a Validator checks before it is emitted.
type Turn struct {
	Decision            Decision
	TargetAction        string
	AskedSlot           string
	ResponseText        string
	RequiredAttributes  []string
	KnownSlots          map[string]model.SlotValue
}

// Validator is one rule a draft Turn must satisfy. A failure is terminal
// for the turn — the controller falls back to a fixed deterministic
// question rather than retrying the rule against the model.
type Validator func(Turn) error

var (
	ErrMultipleQuestions  = errors.New("response does not ask exactly one question")
	ErrAdviceWithoutTool  = errors.New("response gives training advice outside a tool execution")
	ErrChattyToolResponse = errors.New("tool-execution response is not a concise confirmation")
	ErrNotExecutedImmediately = errors.New("all required attributes are known but the turn did not execute the tool")
)

var questionMark = regexp.MustCompile(`\?`)

// adviceMarkers are phrases that read as prescriptive training advice
// ("run 6 miles", "easy pace", "your long run should be") rather than a
// plain question or a tool-execution confirmation.
var adviceMarkers = []string{
	"you should run", "your pace should", "i recommend", "your long run should",
	"increase your mileage", "your next workout",
}

// DefaultValidators is the four-rule validator pipeline: single-question,
// no-advice, no-chatty, execute-immediately.
func DefaultValidators() []Validator {
	return []Validator{
		ValidateSingleQuestion,
		ValidateNoAdvice,
		ValidateNoChatty,
		ValidateExecuteImmediately,
	}
}

// Validate runs every validator in order, returning the first failure.
func Validate(validators []Validator, t Turn) error {
	for _, v := range validators {
		if err := v(t); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSingleQuestion enforces that an ASK_ONE turn asks exactly one
// question — never a compound ask for two slots at once.
func ValidateSingleQuestion(t Turn) error {
	if t.Decision != DecisionAskOne {
		return nil
	}
	if len(questionMark.FindAllString(t.ResponseText, -1)) != 1 {
		return ErrMultipleQuestions
	}
	return nil
}

// ValidateNoAdvice enforces that only an EXECUTE_TOOL turn is allowed to
// contain prescriptive training content; a CHAT or ASK_ONE turn that
// slips in advice bypasses the deterministic planning pipeline.
func ValidateNoAdvice(t Turn) error {
	if t.Decision == DecisionExecuteTool {
		return nil
	}
	lower := strings.ToLower(t.ResponseText)
	for _, marker := range adviceMarkers {
		if strings.Contains(lower, marker) {
			return ErrAdviceWithoutTool
		}
	}
	return nil
}

// ValidateNoChatty enforces that an EXECUTE_TOOL confirmation stays
// short — a long reply there means the model padded a tool confirmation
// with chat instead of handing off to the deterministic pipeline's own
// session text.
func ValidateNoChatty(t Turn) error {
	if t.Decision != DecisionExecuteTool {
		return nil
	}
	if len(t.ResponseText) > 400 {
		return ErrChattyToolResponse
	}
	return nil
}

// ValidateExecuteImmediately enforces that once every required attribute
// for TargetAction is already in KnownSlots, the turn executes the tool
// rather than asking another question it doesn't need to.
func ValidateExecuteImmediately(t Turn) error {
	if t.Decision != DecisionAskOne {
		return nil
	}
	for _, attr := range t.RequiredAttributes {
		if _, ok := t.KnownSlots[attr]; !ok {
			return nil
		}
	}
	return fmt.Errorf("%w (target_action=%s)", ErrNotExecutedImmediately, t.TargetAction)
}
