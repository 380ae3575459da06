// Package slot defines the closed set of attribute slots the controller
// and extractor share: their normalizers and validators. This plays a
// role analogous to an action-validator registry, but for individual
// conversational attributes.
package slot

import "fmt"

// Definition is a registered slot: its name, a human prompt for ASK_ONE,
// and the normalize/validate functions applied to raw extracted text.
type Definition struct {
	Name      string
	Prompt    string
	Normalize func(raw string) (any, error)
	Validate  func(normalized any) error
}

var registry = map[string]Definition{}

func register(d Definition) {
	registry[d.Name] = d
}

// Get returns the registered definition for name, or false if unknown.
func Get(name string) (Definition, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns every registered slot name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// Closed set of slot names the domain recognizes.
const (
	RaceDistance       = "race_distance"
	RaceDate           = "race_date"
	TargetTime         = "target_time"
	WeeklyMileage      = "weekly_mileage"
	ModifyDate         = "modify_date"
	NewIntent          = "new_intent"
	WorkoutDescription = "workout_description"
)

func init() {
	register(Definition{
		Name:      RaceDistance,
		Prompt:    "What distance is the race (e.g. marathon, half marathon, 10k)?",
		Normalize: normalizeRaceDistance,
		Validate:  validateRaceDistance,
	})
	register(Definition{
		Name:      RaceDate,
		Prompt:    "What's the race date?",
		Normalize: normalizeRaceDate,
		Validate:  validateRaceDate,
	})
	register(Definition{
		Name:      TargetTime,
		Prompt:    "What's your target finish time?",
		Normalize: normalizeDuration,
		Validate:  validateTargetTime,
	})
	register(Definition{
		Name:      WeeklyMileage,
		Prompt:    "What's your current weekly mileage?",
		Normalize: normalizeMileage,
		Validate:  validateWeeklyMileage,
	})
	register(Definition{
		Name:      ModifyDate,
		Prompt:    "Which day do you want to change?",
		Normalize: normalizeRaceDate,
		Validate:  validateRaceDate,
	})
	register(Definition{
		Name:      NewIntent,
		Prompt:    "Should this be an easy run, a quality session, a long run, or rest?",
		Normalize: normalizeIntent,
		Validate:  validateIntent,
	})
	register(Definition{
		Name:      WorkoutDescription,
		Prompt:    "What do you want the workout to look like?",
		Normalize: normalizeWorkoutDescription,
		Validate:  validateWorkoutDescription,
	})
}

// ErrAmbiguous marks a raw value that could not be confidently normalized.
type ErrAmbiguous struct {
	Slot string
	Raw  string
	Err  error
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("ambiguous value for slot %s: %q: %v", e.Slot, e.Raw, e.Err)
}

func (e *ErrAmbiguous) Unwrap() error { return e.Err }
