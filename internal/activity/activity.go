// Package activity defines the external-collaborator boundary for
// completed-activity ingestion (third-party activity-provider ingestion
// mechanics are out of scope). Only the abstract Source interface the
// core consumes, plus a couple of inert reference adapters, live here —
// a provider-registry pattern (a closed map of provider name ->
// implementation, selected at call time, not a runtime plugin system).
package activity

import (
	"context"
	"time"

	"github.com/tracepace/coach/internal/model"
)

// Source is the interface get_recent_activities (C2's Data Tool Server
// operation) calls through. Real ingestion — webhooks, OAuth, polling —
// is explicitly out of scope; this interface is what a future adapter
// would implement.
type Source interface {
	// Name identifies the provider this Source represents, used as
	// model.Activity.Source on every activity it returns.
	Name() string
	RecentActivities(ctx context.Context, athleteID int64, since time.Time) ([]model.Activity, error)
}

// Registry is a closed map of provider name -> Source, used for
// provider-keyed dispatch.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a Registry over the given sources, keyed by Name().
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// Get returns the Source registered under name, or false if none is.
func (r *Registry) Get(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// All returns every registered provider name.
func (r *Registry) All() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
