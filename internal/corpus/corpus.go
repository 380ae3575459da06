// Package corpus is the process-wide, lazily-loaded, read-only cache over
// the three closed document kinds (philosophy, structure, template) the
// planning pipeline draws on. It uses a single in-memory cache filled by
// LoadAll rather than reaching for a graph database: the corpus is a flat
// set filtered by a handful of fields, never traversed. A lookup that
// misses the cache returns nothing; the store is not read again.
package corpus

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tracepace/coach/internal/model"
)

// Store is the persistence boundary corpus reads through. internal/store
// provides the Postgres-backed implementation.
type Store interface {
	ListDocuments(ctx context.Context) ([]RawDocument, error)
	GetDocument(ctx context.Context, id string) (RawDocument, error)
}

// RawDocument is an unparsed corpus row as read from storage.
type RawDocument struct {
	ID          string
	Kind        string
	FrontMatter []byte
	Body        string
	Embedding   []float64
}

// Cache is the in-memory index built by LoadAll. Safe for concurrent
// reads; writes only happen during LoadAll. The cache does not call
// Store.GetDocument and has no single-document refresh.
type Cache struct {
	store Store

	mu           sync.RWMutex
	philosophies []model.Philosophy
	structures   []model.Structure
	templates    []model.Template
	loaded       bool
}

// New builds a Cache bound to store. Callers must call LoadAll before
// using Philosophies/Structures/Templates.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// LoadAll populates the process-wide cache. Called once at startup by
// every binary that needs corpus access.
func (c *Cache) LoadAll(ctx context.Context) error {
	docs, err := c.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("loading corpus documents: %w", err)
	}

	var philosophies []model.Philosophy
	var structures []model.Structure
	var templates []model.Template

	for _, d := range docs {
		switch d.Kind {
		case "philosophy":
			p, err := parsePhilosophy(d)
			if err != nil {
				return fmt.Errorf("parsing philosophy %s: %w", d.ID, err)
			}
			philosophies = append(philosophies, p)
		case "structure":
			s, err := parseStructure(d)
			if err != nil {
				return fmt.Errorf("parsing structure %s: %w", d.ID, err)
			}
			structures = append(structures, s)
		case "template":
			t, err := parseTemplate(d)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", d.ID, err)
			}
			templates = append(templates, t)
		default:
			return fmt.Errorf("unrecognized corpus document kind %q for %s", d.Kind, d.ID)
		}
	}

	c.mu.Lock()
	c.philosophies = philosophies
	c.structures = structures
	c.templates = templates
	c.loaded = true
	c.mu.Unlock()

	return nil
}

// Philosophies returns every philosophy applicable to a race type and
// audience, ordered by priority descending, ties broken lexicographically
// by id (B2.5's deterministic ranking rule).
func (c *Cache) Philosophies(raceType, audience string) []model.Philosophy {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Philosophy
	for _, p := range c.philosophies {
		if p.RaceType != "" && p.RaceType != raceType {
			continue
		}
		if p.Audience != "" && p.Audience != audience {
			continue
		}
		out = append(out, p)
	}
	sortByPriorityDesc(out, func(p model.Philosophy) int { return p.Priority }, func(p model.Philosophy) string { return p.ID })
	return out
}

// Structures returns every structure applicable to a philosophy, race
// type, audience, phase, and days-to-race window.
func (c *Cache) Structures(philosophyID, raceType, audience, phase string, daysToRace int) []model.Structure {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Structure
	for _, s := range c.structures {
		if s.PhilosophyID != "" && s.PhilosophyID != philosophyID {
			continue
		}
		if s.RaceType != "" && s.RaceType != raceType {
			continue
		}
		if s.Audience != "" && s.Audience != audience {
			continue
		}
		if s.Phase != "" && s.Phase != phase {
			continue
		}
		if s.DaysToRace != [2]int{0, 0} && (daysToRace < s.DaysToRace[0] || daysToRace > s.DaysToRace[1]) {
			continue
		}
		out = append(out, s)
	}
	sortByPriorityDesc(out, func(s model.Structure) int { return s.Priority }, func(s model.Structure) string { return s.ID })
	return out
}

// Templates returns every template applicable to a philosophy, race type,
// audience, phase, and session type.
func (c *Cache) Templates(philosophyID, raceType, audience, phase, sessionType string) []model.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Template
	for _, t := range c.templates {
		if t.PhilosophyID != "" && t.PhilosophyID != philosophyID {
			continue
		}
		if t.RaceType != "" && t.RaceType != raceType {
			continue
		}
		if t.Audience != "" && t.Audience != audience {
			continue
		}
		if t.Phase != "" && t.Phase != phase {
			continue
		}
		if t.SessionType != "" && t.SessionType != sessionType {
			continue
		}
		out = append(out, t)
	}
	sortByPriorityDesc(out, func(t model.Template) int { return t.Priority }, func(t model.Template) string { return t.ID })
	return out
}

// TemplateByID returns a single template by id, for B6's session-text
// generation which needs the chosen template's body/steps, not a
// re-ranked candidate list.
func (c *Cache) TemplateByID(id string) (model.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.templates {
		if t.ID == id {
			return t, true
		}
	}
	return model.Template{}, false
}

// sortByPriorityDesc orders items by descending priority, breaking ties
// lexicographically by id — the deterministic tie-break required
// everywhere the corpus ranks candidates (B2.5 philosophy selection, B5
// template selection).
func sortByPriorityDesc[T any](items []T, priority func(T) int, idOf func(T) string) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			pa, pb := priority(items[j]), priority(items[j-1])
			if pa < pb || (pa == pb && idOf(items[j]) >= idOf(items[j-1])) {
				break
			}
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// CosineSimilarity is the pure similarity helper B2.5 uses to rank
// candidate documents by embedding proximity.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
