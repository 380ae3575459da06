package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/model"
)

// TemplateLookup resolves a single template by id — what B6 needs to
// read the chosen template's step skeleton, as opposed to TemplateSource
// which B5 uses to rank candidates.
type TemplateLookup interface {
	TemplateByID(id string) (model.Template, bool)
}

// metersPerMinuteEasyPace is the pace used only to display an estimated
// end time on a distance-primary session; it never feeds back into
// DurationS, which B4's allocator leaves at zero for every day.
const metersPerMinuteEasyPace = 160.9344 // roughly a 10:00/mile easy pace

type sessionTextResult struct {
	Text  string               `json:"text" jsonschema:"required"`
	Steps []model.WorkoutStep `json:"steps" jsonschema:"required"`
}

// B6 materializes every non-rest day into a PlannedSession, generating
// session text and steps through the structured-completion capability.
// Any completion failure — network, schema validation, timeout — falls
// back to a deterministic template-string builder rather than failing
// the whole plan; a plan with plain-but-correct session text beats no
// plan at all.
func B6(ctx context.Context, comp completion.Client, lookup TemplateLookup, athleteID int64, athleteTags []string, weeks []model.WeekRecord) ([]model.PlannedSession, error) {
	var sessions []model.PlannedSession
	for _, week := range weeks {
		for _, d := range week.Days {
			if d.Intent == model.IntentRest {
				continue
			}
			template, ok := lookup.TemplateByID(d.TemplateID)
			if !ok {
				return nil, fmt.Errorf("pipeline: B6: template %q not found for day %s", d.TemplateID, d.Date.Format("2006-01-02"))
			}

			text, steps := generateSessionText(ctx, comp, template, d)
			durationEstimateS := estimateDurationS(d)
			sessions = append(sessions, model.PlannedSession{
				AthleteID:   athleteID,
				StartsAt:    d.Date,
				EndsAt:      d.Date.Add(time.Duration(durationEstimateS) * time.Second),
				Sport:       model.SportRun,
				SessionType: d.Intent,
				Intent:      d.Intent,
				DistanceM:   d.DistanceM,
				DurationS:   d.DurationS,
				Text:        text,
				Steps:       steps,
				Status:      model.SessionStatusPlanned,
				Tags:        athleteTags,
			})
		}
	}
	return sessions, nil
}

// estimateDurationS returns a display-only duration estimate for a day
// whose primary metric is distance, used solely to compute EndsAt. Days
// whose primary metric is duration already carry DurationS directly.
func estimateDurationS(d model.DayRecord) int {
	if d.DurationS > 0 {
		return d.DurationS
	}
	if d.DistanceM <= 0 {
		return 0
	}
	return int(d.DistanceM / metersPerMinuteEasyPace * 60)
}

func generateSessionText(ctx context.Context, comp completion.Client, template model.Template, d model.DayRecord) (string, []model.WorkoutStep) {
	if comp == nil {
		return fallbackSessionText(template, d)
	}

	schema := completion.GenerateSchema[sessionTextResult]()
	var result sessionTextResult
	_, err := comp.Complete(ctx, completion.Request{
		SystemPrompt: "Write a short, concrete session description and its steps from the given template and target distance/duration.",
		UserPrompt:   sessionTextPrompt(template, d),
		SchemaName:   "session_text",
		Schema:       schema,
		Temperature:  completion.Temp(0.3),
	}, &result)
	if err != nil || len(result.Steps) == 0 {
		slog.WarnContext(ctx, "pipeline: B6 completion failed, using fallback text", "error", err, "template_id", template.ID)
		return fallbackSessionText(template, d)
	}
	return result.Text, result.Steps
}

func sessionTextPrompt(template model.Template, d model.DayRecord) string {
	return fmt.Sprintf("Template: %s\nIntent: %s\nTarget distance (m): %.0f\nTarget duration (s): %d",
		template.Body, d.Intent, d.DistanceM, estimateDurationS(d))
}

func fallbackSessionText(template model.Template, d model.DayRecord) (string, []model.WorkoutStep) {
	text := fmt.Sprintf("%s: %.1f km (%d min)", humanIntent(d.Intent), d.DistanceM/1000, estimateDurationS(d)/60)
	steps := make([]model.WorkoutStep, len(template.Steps))
	for i, ts := range template.Steps {
		steps[i] = model.WorkoutStep{
			StepIndex:    ts.StepIndex,
			StepType:     ts.StepType,
			Targets:      ts.TargetsHint,
			Instructions: ts.TargetsHint,
			Purpose:      ts.Purpose,
		}
	}
	if len(steps) == 0 {
		steps = []model.WorkoutStep{{StepIndex: 0, StepType: d.Intent, Targets: text, Purpose: d.Intent}}
	}
	return text, steps
}

func humanIntent(intent string) string {
	switch intent {
	case model.IntentLong:
		return "Long run"
	case model.IntentQuality:
		return "Quality session"
	case model.IntentEasy:
		return "Easy run"
	default:
		return "Session"
	}
}
