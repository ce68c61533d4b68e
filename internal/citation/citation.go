// Package citation pulls statutory cross-references out of normalized bill
// text. The pipeline only depends on the Extractor interface; the Bluebook
// extractor is the implementation wired by the binaries.
package citation

import (
	"context"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// Extractor finds citations in text. An extractor that could not produce a
// result must return an error; callers record that as zero citations plus a
// warning. A nil or empty slice with a nil error is a successful scan that
// found nothing and raises no warning.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.Citation, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string) ([]model.Citation, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, text string) ([]model.Citation, error) {
	return f(ctx, text)
}

// Dedupe keeps the first match for every citation id. Matches for the same
// provision at different offsets are duplicates. The returned ids follow
// first-occurrence order.
func Dedupe(matches []model.Citation) ([]model.Citation, []string) {
	unique := make([]model.Citation, 0, len(matches))
	ids := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.CitationID == "" || seen[m.CitationID] {
			continue
		}
		seen[m.CitationID] = true
		unique = append(unique, m)
		ids = append(ids, m.CitationID)
	}
	return unique, ids
}
