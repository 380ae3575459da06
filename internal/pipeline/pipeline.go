// Package pipeline is the Planning Pipeline (C7): seven pure/near-pure
// stages run in a fixed order with named guards at four stage boundaries. No
// stage retries and there is no repair loop: a guard failure returns a
// *StageError and aborts the run with nothing persisted.
package pipeline

import (
	"context"
	"fmt"

	"github.com/tracepace/coach/common/id"
	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/model"
)

// Corpus is everything the pipeline reads from internal/corpus.Cache.
type Corpus interface {
	PhilosophySource
	StructureSource
	TemplateSource
	TemplateLookup
}

// Pipeline wires a corpus, a completion capability, and a persistor
// together to run B2 through B7 over a PlanningContext.
type Pipeline struct {
	corpus     Corpus
	completion completion.Client
	persistor  Persistor
}

func New(corpus Corpus, comp completion.Client, persistor Persistor) *Pipeline {
	return &Pipeline{corpus: corpus, completion: comp, persistor: persistor}
}

// Run executes the full seven-stage pipeline and persists the result.
func (p *Pipeline) Run(ctx context.Context, pc model.PlanningContext) (*model.PlanResult, error) {
	macroWeeks, err := B2(pc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B2: %w", err)
	}

	if err := guardB2ToB3(macroWeeks); err != nil {
		return nil, err
	}

	philosophy, err := B2_5(p.corpus, pc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B2_5: %w", err)
	}

	weeks, err := B3(p.corpus, philosophy, macroWeeks, pc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B3: %w", err)
	}

	weeks, err = B4(weeks, pc.FatigueFactor)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B4: %w", err)
	}

	if err := guardB4ToB5(weeks); err != nil {
		return nil, err
	}

	weeks, err = B5(p.corpus, philosophy, weeks, pc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B5: %w", err)
	}

	if err := guardB5ToB6(weeks); err != nil {
		return nil, err
	}

	sessions, err := B6(ctx, p.completion, p.corpus, pc.Athlete.ID, pc.AthleteTags, weeks)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B6: %w", err)
	}

	if err := guardB7(sessions); err != nil {
		return nil, err
	}

	planID := id.New()
	for i := range sessions {
		sessions[i].PlanID = planID
	}

	persisted, err := B7(ctx, p.persistor, planID, sessions)
	if err != nil {
		return nil, fmt.Errorf("pipeline: B7: %w", err)
	}

	return &model.PlanResult{PlanID: planID, Weeks: weeks, Sessions: persisted}, nil
}
