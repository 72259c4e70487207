package mock

import (
	"context"
	"iter"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/core/response"
	"github.com/sadopc/jsonstash/internal/store"
)

// Source yields persisted records. *store.Store satisfies it.
type Source interface {
	Iterate(ctx context.Context) iter.Seq2[store.Record, error]
}

// Route is a decoded path and the response served for it.
type Route struct {
	Path      string
	Key       string
	Response  response.StorableResponse
	UpdatedAt time.Time
}

// RouteTable maps decoded paths to stored responses. It is read-only once
// built.
type RouteTable struct {
	routes  map[string]Route
	skipped int
}

// NewRouteTable builds a table from routes. Later duplicates replace earlier
// ones.
func NewRouteTable(routes ...Route) *RouteTable {
	t := &RouteTable{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		t.routes[r.Path] = r
	}
	return t
}

// Lookup returns the route registered for path.
func (t *RouteTable) Lookup(path string) (Route, bool) {
	r, ok := t.routes[path]
	return r, ok
}

// Paths returns every registered path in sorted order.
func (t *RouteTable) Paths() []string {
	paths := make([]string, 0, len(t.routes))
	for p := range t.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Routes returns every route ordered by path.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, p := range t.Paths() {
		out = append(out, t.routes[p])
	}
	return out
}

// Len returns the number of routes.
func (t *RouteTable) Len() int { return len(t.routes) }

// Skipped returns how many records were dropped while materializing.
func (t *RouteTable) Skipped() int { return t.skipped }

// Materialize reads every record from src and builds the route table.
// Records whose iteration step, key or value is invalid are logged and
// left out; they never fail the build. When two keys decode to the same
// path the one yielded last wins.
func Materialize(ctx context.Context, src Source, log zerolog.Logger) *RouteTable {
	table := &RouteTable{routes: make(map[string]Route)}

	for rec, err := range src.Iterate(ctx) {
		if err != nil {
			table.skipped++
			log.Warn().Err(err).Msg("skipping unreadable record")
			continue
		}

		path, err := endpoint.Decode(rec.Key)
		if err != nil {
			table.skipped++
			log.Warn().Err(err).Str("key", rec.Key).Msg("skipping record with invalid key")
			continue
		}

		resp, err := response.Unmarshal(rec.Value)
		if err != nil {
			table.skipped++
			log.Warn().Err(err).Str("path", path).Msg("skipping record with invalid payload")
			continue
		}

		if prev, ok := table.routes[path]; ok {
			log.Warn().
				Str("path", path).
				Str("previous_key", prev.Key).
				Str("key", rec.Key).
				Msg("duplicate path, keeping the later record")
		}
		table.routes[path] = Route{Path: path, Key: rec.Key, Response: resp, UpdatedAt: rec.UpdatedAt}
	}

	log.Debug().Int("routes", table.Len()).Int("skipped", table.skipped).Msg("route table built")
	return table
}
