// Package metadata resolves the issue date and alternate-format URLs of a
// bill version from its metadata documents. Resolution runs an ordered chain
// of strategies and stops at the first one that finds a usable date.
package metadata

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// ErrNoValidDate means no strategy produced an issue date for a version.
var ErrNoValidDate = errors.New("no valid issue date")

// Sources carries the raw metadata documents for one version. A nil slice
// means the file does not exist; reading the files is the caller's job.
type Sources struct {
	VersionID string
	Primary   []byte
	Secondary []byte
}

// Result is a resolved issue date plus whatever URLs the winning strategy
// could supply. URLs is nil when the strategy has no URL information.
type Result struct {
	IssuedOn model.Date
	URLs     map[string]string
	Source   string
}

// Strategy is one link in the resolution chain.
type Strategy interface {
	Name() string
	Resolve(src Sources) (Result, bool)
}

// RejectionError reports a version dropped for lack of a date. Suppressed is
// set for versions known to have never been finalized; callers do not warn
// about those.
type RejectionError struct {
	VersionID  string
	Suppressed bool
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.VersionID, ErrNoValidDate)
}

func (e *RejectionError) Unwrap() error { return ErrNoValidDate }

// Resolver runs strategies in order.
type Resolver struct {
	strategies []Strategy
	suppressed map[string]bool
}

// DefaultStrategies is MODS first, then the Dublin Core block embedded in
// the version's own XML.
func DefaultStrategies() []Strategy {
	return []Strategy{PrimaryStrategy{}, SecondaryStrategy{}}
}

// NewResolver builds a resolver. When no strategies are passed the default
// chain is used.
func NewResolver(suppressed []string, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	set := make(map[string]bool, len(suppressed))
	for _, id := range suppressed {
		set[strings.TrimSpace(id)] = true
	}
	return &Resolver{strategies: strategies, suppressed: set}
}

// Resolve returns the first strategy result, or a *RejectionError.
func (r *Resolver) Resolve(src Sources) (Result, error) {
	for _, s := range r.strategies {
		if res, ok := s.Resolve(src); ok {
			res.Source = s.Name()
			return res, nil
		}
	}
	return Result{}, &RejectionError{VersionID: src.VersionID, Suppressed: r.suppressed[src.VersionID]}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
}

// ParseIssued parses a metadata date and truncates it to the calendar day in
// the timestamp's own offset, so re-runs store identical values no matter
// how the source formatted the time.
func ParseIssued(raw string) (model.Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}
