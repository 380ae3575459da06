package pipeline_test

import (
	"context"
	"time"

	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/pipeline"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeCorpus struct {
	philosophies []model.Philosophy
	structures   []model.Structure
	templates    []model.Template
}

func (f *fakeCorpus) Philosophies(raceType, audience string) []model.Philosophy { return f.philosophies }
func (f *fakeCorpus) Structures(philosophyID, raceType, audience, phase string, daysToRace int) []model.Structure {
	return f.structures
}
func (f *fakeCorpus) Templates(philosophyID, raceType, audience, phase, sessionType string) []model.Template {
	var out []model.Template
	for _, t := range f.templates {
		if t.SessionType == sessionType {
			out = append(out, t)
		}
	}
	return out
}
func (f *fakeCorpus) TemplateByID(id string) (model.Template, bool) {
	for _, t := range f.templates {
		if t.ID == id {
			return t, true
		}
	}
	return model.Template{}, false
}

type fakePersistor struct {
	inserted []model.PlannedSession
}

func (f *fakePersistor) InsertPlan(ctx context.Context, planID int64, sessions []model.PlannedSession) ([]model.PlannedSession, error) {
	for i := range sessions {
		sessions[i].PlanID = planID
	}
	f.inserted = append(f.inserted, sessions...)
	return sessions, nil
}

var _ = Describe("Pipeline.Run", func() {
	var (
		corpus    *fakeCorpus
		persistor *fakePersistor
		p         *pipeline.Pipeline
		pc        model.PlanningContext
	)

	BeforeEach(func() {
		corpus = &fakeCorpus{
			philosophies: []model.Philosophy{
				{FrontMatter: model.FrontMatter{ID: "phil-1", Priority: 10}, TaperWeeks: 1, LongRunEmphasis: 0.4},
			},
			structures: []model.Structure{
				{
					FrontMatter: model.FrontMatter{ID: "struct-build", Priority: 10},
					Days: []model.StructureDay{
						{Label: "mon", Intent: model.IntentRest},
						{Label: "tue", Intent: model.IntentQuality},
						{Label: "wed", Intent: model.IntentEasy},
						{Label: "thu", Intent: model.IntentEasy},
						{Label: "fri", Intent: model.IntentRest},
						{Label: "sat", Intent: model.IntentLong},
						{Label: "sun", Intent: model.IntentRest},
					},
					Rules: model.StructureRules{NoConsecutiveHardDays: true, LongRunRequiredCount: 1},
				},
			},
			templates: []model.Template{
				{FrontMatter: model.FrontMatter{ID: "tmpl-quality", Priority: 10, SessionType: model.IntentQuality}},
				{FrontMatter: model.FrontMatter{ID: "tmpl-easy", Priority: 10, SessionType: model.IntentEasy}},
				{FrontMatter: model.FrontMatter{ID: "tmpl-long", Priority: 10, SessionType: model.IntentLong}},
			},
		}
		persistor = &fakePersistor{}
		p = pipeline.New(corpus, nil, persistor)

		pc = model.PlanningContext{
			Athlete:        model.Athlete{ID: 1, RaceType: "marathon", Audience: "intermediate"},
			StartsAt:       time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			RaceDate:       time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
			WeeklyMileageM: 40 * 1609.34,
		}
	})

	It("produces a persisted plan covering every week", func() {
		result, err := p.Run(context.Background(), pc)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Weeks).NotTo(BeEmpty())
		Expect(result.Sessions).NotTo(BeEmpty())
		Expect(persistor.inserted).To(HaveLen(len(result.Sessions)))
	})

	It("never persists a rest day as a session", func() {
		result, err := p.Run(context.Background(), pc)
		Expect(err).NotTo(HaveOccurred())

		for _, s := range result.Sessions {
			Expect(s.Intent).NotTo(Equal(model.IntentRest))
		}
	})

	It("fails closed when no structure fits the macro plan", func() {
		corpus.structures = nil

		_, err := p.Run(context.Background(), pc)

		Expect(err).To(HaveOccurred())
		Expect(persistor.inserted).To(BeEmpty())
	})
})
