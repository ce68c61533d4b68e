// Package report accumulates the warnings and notes of one indexing run and
// emits them once the run is over.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bundle statuses.
const (
	StatusWarning = "warning"
	StatusNote    = "note"
	StatusSuccess = "success"
)

// Entry is one warning or note.
type Entry struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Counts summarizes what a run processed.
type Counts struct {
	Bills    int `json:"bills"`
	Versions int `json:"versions"`
}

// Bundle is what emitters receive: all warnings, all notes, or the final
// success summary.
type Bundle struct {
	RunID   string    `json:"run_id"`
	Source  string    `json:"source"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Entries []Entry   `json:"entries,omitempty"`
	Counts  *Counts   `json:"counts,omitempty"`
	At      time.Time `json:"at"`
}

// Emitter delivers bundles somewhere: logs, a database table.
type Emitter interface {
	Emit(ctx context.Context, b Bundle) error
}

// Reporter collects entries for one run. It is not safe for concurrent use;
// runs are single threaded.
type Reporter struct {
	runID    string
	source   string
	warnings []Entry
	notes    []Entry
	emitters []Emitter
	now      func() time.Time
}

// New creates a reporter with a fresh run id.
func New(source string, emitters ...Emitter) *Reporter {
	return &Reporter{
		runID:    uuid.NewString(),
		source:   source,
		emitters: emitters,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunID identifies the run in every emitted bundle.
func (r *Reporter) RunID() string { return r.runID }

// Warn records a warning.
func (r *Reporter) Warn(msg string, ctx map[string]any) {
	r.warnings = append(r.warnings, Entry{Message: msg, Context: ctx})
}

// Note records an informational note.
func (r *Reporter) Note(msg string, ctx map[string]any) {
	r.notes = append(r.notes, Entry{Message: msg, Context: ctx})
}

// Add records an already built entry under the given status.
func (r *Reporter) Add(status string, e Entry) {
	if status == StatusNote {
		r.notes = append(r.notes, e)
		return
	}
	r.warnings = append(r.warnings, e)
}

func (r *Reporter) Warnings() []Entry { return append([]Entry(nil), r.warnings...) }

func (r *Reporter) Notes() []Entry { return append([]Entry(nil), r.notes...) }

// Finish emits the warning bundle and the note bundle when they are
// non-empty, then the success summary. Emitter failures are joined and
// returned but never stop the remaining emitters.
func (r *Reporter) Finish(ctx context.Context, counts Counts) ([]Bundle, error) {
	at := r.now()
	var bundles []Bundle
	if len(r.warnings) > 0 {
		bundles = append(bundles, Bundle{
			RunID: r.runID, Source: r.source, Status: StatusWarning, At: at,
			Message: fmt.Sprintf("%d warnings", len(r.warnings)),
			Entries: r.Warnings(),
		})
	}
	if len(r.notes) > 0 {
		bundles = append(bundles, Bundle{
			RunID: r.runID, Source: r.source, Status: StatusNote, At: at,
			Message: fmt.Sprintf("%d notes", len(r.notes)),
			Entries: r.Notes(),
		})
	}
	c := counts
	bundles = append(bundles, Bundle{
		RunID: r.runID, Source: r.source, Status: StatusSuccess, At: at,
		Message: fmt.Sprintf("Indexed versions for %d bills (%d versions)", counts.Bills, counts.Versions),
		Counts:  &c,
	})

	var errs []error
	for _, b := range bundles {
		for _, e := range r.emitters {
			if err := e.Emit(ctx, b); err != nil {
				errs = append(errs, fmt.Errorf("emit %s bundle: %w", b.Status, err))
			}
		}
	}
	return bundles, errors.Join(errs...)
}
