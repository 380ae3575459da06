package slot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tracepace/coach/internal/model"
)

var raceDistanceAliases = map[string]string{
	"marathon":      "marathon",
	"half marathon": "half_marathon",
	"half-marathon": "half_marathon",
	"half":          "half_marathon",
	"10k":           "10k",
	"10 k":          "10k",
	"5k":            "5k",
	"5 k":           "5k",
	"50k":           "50k",
	"50 k":          "50k",
	"ultra":         "50k",
}

func normalizeRaceDistance(raw string) (any, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := raceDistanceAliases[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unrecognized race distance %q", raw)
}

func validateRaceDistance(v any) error {
	s, ok := v.(string)
	if !ok || s == "" {
		return fmt.Errorf("race distance must be a non-empty normalized string")
	}
	return nil
}

func normalizeRaceDate(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"2006-01-02", "January 2, 2006", "Jan 2, 2006", "01/02/2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized race date %q", raw)
}

func validateRaceDate(v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return fmt.Errorf("race date must be a parsed time")
	}
	if t.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("race date %s is implausibly far in the past", t)
	}
	return nil
}

// normalizeDuration parses "3:30:00", "sub-3", "3h30m", or "210 minutes"
// style durations into a time.Duration.
func normalizeDuration(raw string) (any, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))

	if strings.HasPrefix(raw, "sub-") || strings.HasPrefix(raw, "sub ") {
		hours := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(raw, "sub-"), "sub "))
		if h, err := strconv.Atoi(hours); err == nil {
			return time.Duration(h) * time.Hour, nil
		}
		return nil, fmt.Errorf("unrecognized sub- duration %q", raw)
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		var h, m, s int
		var err error
		switch len(parts) {
		case 3:
			h, err = strconv.Atoi(parts[0])
			if err == nil {
				m, err = strconv.Atoi(parts[1])
			}
			if err == nil {
				s, err = strconv.Atoi(parts[2])
			}
		case 2:
			// A race target's "H:MM" shape is far more common than
			// "M:SS", so the two-part form is read as hours:minutes.
			h, err = strconv.Atoi(parts[0])
			if err == nil {
				m, err = strconv.Atoi(parts[1])
			}
		default:
			err = fmt.Errorf("unrecognized duration shape")
		}
		if err != nil {
			return nil, fmt.Errorf("parsing duration %q: %w", raw, err)
		}
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
	}

	if d, err := time.ParseDuration(strings.ReplaceAll(raw, " ", "")); err == nil {
		return d, nil
	}

	raw = strings.TrimSuffix(raw, " minutes")
	raw = strings.TrimSuffix(raw, " minute")
	raw = strings.TrimSuffix(raw, " min")
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return time.Duration(n) * time.Minute, nil
	}

	return nil, fmt.Errorf("unrecognized duration %q", raw)
}

func validateTargetTime(v any) error {
	d, ok := v.(time.Duration)
	if !ok {
		return fmt.Errorf("target time must be a parsed duration")
	}
	if d <= 0 || d > 30*time.Hour {
		return fmt.Errorf("target time %s is outside a plausible race-finish range", d)
	}
	return nil
}

var mileageUnitSuffixes = []string{" miles/week", " miles per week", " mpw", " miles", " mile", "mi"}

// normalizeMileage requires an explicit unit ("55 mpw", "55 miles/week",
// "55 miles", "55mi"); a bare number is rejected unless the preceding
// prompt explicitly asked for it — NormalizeMileageExplicit is the carve-out
// the extractor uses when the controller's prior turn asked specifically
// for weekly mileage.
func normalizeMileage(raw string) (any, error) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	for _, suffix := range mileageUnitSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return parseMileageNumber(strings.TrimSuffix(trimmed, suffix))
		}
	}
	return nil, fmt.Errorf("mileage %q has no recognized unit", raw)
}

// NormalizeMileageExplicit parses a bare number as weekly mileage. Callers
// must only use this when the slot being filled is the one the controller
// just explicitly prompted for.
func NormalizeMileageExplicit(raw string) (any, error) {
	if v, err := normalizeMileage(raw); err == nil {
		return v, nil
	}
	return parseMileageNumber(strings.TrimSpace(raw))
}

func parseMileageNumber(s string) (any, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "~"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("unrecognized mileage %q", s)
	}
	return v * 1609.34, nil // store meters
}

func validateWeeklyMileage(v any) error {
	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("weekly mileage must be a number")
	}
	if f < 0 || f > 500*1609.34 {
		return fmt.Errorf("weekly mileage %.0fm is outside a plausible range", f)
	}
	return nil
}

var intentAliases = map[string]string{
	"easy":    model.IntentEasy,
	"quality": model.IntentQuality,
	"hard":    model.IntentQuality,
	"speed":   model.IntentQuality,
	"workout": model.IntentQuality,
	"long":    model.IntentLong,
	"long run": model.IntentLong,
	"rest":    model.IntentRest,
	"off":     model.IntentRest,
}

func normalizeIntent(raw string) (any, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := intentAliases[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unrecognized intent %q", raw)
}

func validateIntent(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("intent must be a normalized string")
	}
	switch s {
	case model.IntentEasy, model.IntentQuality, model.IntentLong, model.IntentRest:
		return nil
	default:
		return fmt.Errorf("unrecognized intent %q", s)
	}
}

func normalizeWorkoutDescription(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty workout description")
	}
	return trimmed, nil
}

func validateWorkoutDescription(v any) error {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fmt.Errorf("workout description must be non-empty text")
	}
	return nil
}
