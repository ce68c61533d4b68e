// Package version assembles bill version records. Builder is the only place
// a model.VersionRecord is constructed.
package version

import (
	"context"
	"errors"
	"time"

	"github.com/dharsanguruparan/BillIndex/internal/citation"
	"github.com/dharsanguruparan/BillIndex/internal/metadata"
	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/report"
)

// ErrMissingDate guards the invariant that every record has an issue date.
var ErrMissingDate = errors.New("version has no issue date")

// Input is everything known about one version before it is built.
type Input struct {
	File     model.VersionFile
	Metadata metadata.Result
	// Text must already be normalized.
	Text string
	Bill model.Bill
}

// Builder turns inputs into records, running citation extraction on the way.
type Builder struct {
	extractor citation.Extractor
	now       func() time.Time
}

// NewBuilder creates a Builder around a citation extractor.
func NewBuilder(extractor citation.Extractor) *Builder {
	return &Builder{
		extractor: extractor,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build returns the record plus any warnings raised while building it. A
// failed citation extraction is a warning: the record is still built, with
// no citations.
func (b *Builder) Build(ctx context.Context, in Input) (model.VersionRecord, []report.Entry, error) {
	if in.Metadata.IssuedOn.IsZero() {
		return model.VersionRecord{}, nil, ErrMissingDate
	}
	versionID := in.File.VersionID()

	var warnings []report.Entry
	citations, ids, err := b.citations(ctx, in.Text)
	if err != nil {
		warnings = append(warnings, report.Entry{
			Message: "Failed to extract citations",
			Context: map[string]any{"bill_version_id": versionID, "error": err.Error()},
		})
	}

	urls := make(map[string]string, len(in.Metadata.URLs))
	for format, u := range in.Metadata.URLs {
		urls[format] = u
	}

	return model.VersionRecord{
		BillVersionID: versionID,
		BillID:        in.File.BillID,
		Code:          in.File.Code,
		Name:          model.VersionName(in.File.Code),
		IssuedOn:      in.Metadata.IssuedOn,
		URLs:          urls,
		FullText:      in.Text,
		Citations:     citations,
		CitationIDs:   ids,
		Bill:          in.Bill.Curated(),
		UpdatedAt:     b.now(),
	}, warnings, nil
}

func (b *Builder) citations(ctx context.Context, text string) ([]model.Citation, []string, error) {
	if b.extractor == nil {
		return []model.Citation{}, []string{}, errors.New("no citation extractor configured")
	}
	matches, err := b.extractor.Extract(ctx, text)
	if err != nil {
		return []model.Citation{}, []string{}, err
	}
	if matches == nil {
		return []model.Citation{}, []string{}, nil
	}
	unique, ids := citation.Dedupe(matches)
	return unique, ids, nil
}
