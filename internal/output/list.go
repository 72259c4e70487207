// Package output renders stored responses for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/jsonstash/internal/mock"
)

// Filter keeps routes whose path matches the glob pattern (with '/' as the
// separator) and fuzzy-matches search. Empty arguments disable that filter.
// Fuzzy results are ordered by match score.
func Filter(routes []mock.Route, pattern, search string) ([]mock.Route, error) {
	out := routes
	if pattern != "" {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", pattern, err)
		}
		matched := make([]mock.Route, 0, len(out))
		for _, r := range out {
			if g.Match(r.Path) {
				matched = append(matched, r)
			}
		}
		out = matched
	}

	if search != "" {
		paths := make([]string, len(out))
		for i, r := range out {
			paths[i] = r.Path
		}
		matches := fuzzy.Find(search, paths)
		found := make([]mock.Route, len(matches))
		for i, m := range matches {
			found[i] = out[m.Index]
		}
		out = found
	}

	return out, nil
}

// PrintList writes one line per route: path, header count, body size and
// age of the record.
func PrintList(w io.Writer, routes []mock.Route) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tHEADERS\tSIZE\tUPDATED")
	for _, r := range routes {
		updated := "-"
		if !r.UpdatedAt.IsZero() {
			updated = humanize.Time(r.UpdatedAt)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			r.Path, len(r.Response.Headers), humanize.IBytes(uint64(len(r.Response.Body))), updated)
	}
	return tw.Flush()
}

type listEntry struct {
	Path      string            `json:"path"`
	Key       string            `json:"key"`
	Size      int               `json:"size"`
	Headers   map[string]string `json:"headers"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// PrintListJSON writes the routes as a JSON array.
func PrintListJSON(w io.Writer, routes []mock.Route) error {
	entries := make([]listEntry, 0, len(routes))
	for _, r := range routes {
		e := listEntry{
			Path:    r.Path,
			Key:     r.Key,
			Size:    len(r.Response.Body),
			Headers: r.Response.Headers,
		}
		if !r.UpdatedAt.IsZero() {
			ts := r.UpdatedAt
			e.UpdatedAt = &ts
		}
		entries = append(entries, e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
