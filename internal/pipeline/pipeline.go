// Package pipeline drives one indexing run: for each candidate bill it
// builds every version record, rolls them up and writes both sinks, then
// issues the refresh barrier and emits the run report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/BillIndex/internal/aggregate"
	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/logger"
	"github.com/dharsanguruparan/BillIndex/internal/metadata"
	"github.com/dharsanguruparan/BillIndex/internal/metrics"
	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/normalize"
	"github.com/dharsanguruparan/BillIndex/internal/report"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
	"github.com/dharsanguruparan/BillIndex/internal/source"
	"github.com/dharsanguruparan/BillIndex/internal/version"
)

// ReportSource names this pipeline in persisted reports.
const ReportSource = "bill_versions"

// Bill outcomes recorded in metrics.
const (
	outcomeIndexed  = "indexed"
	outcomeSkipped  = "skipped"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Options are the per-run settings. Zero values mean: no limit, every
// candidate bill, no reindexing, the configured current session.
type Options struct {
	Limit            int
	BillID           string
	RearchiveSession int
	Session          int
	Debug            bool
	Isolation        config.Isolation
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Session  int
	Counts   report.Counts
	Bundles  []report.Bundle
	Failures int
}

// Deps are the collaborators a Runner needs.
type Deps struct {
	Store          sink.DocumentStore
	Writer         *sink.Writer
	Layout         source.Layout
	Resolver       *metadata.Resolver
	Builder        *version.Builder
	Emitters       []report.Emitter
	Metrics        *metrics.Metrics
	Log            zerolog.Logger
	CurrentSession int
}

// Runner executes runs. A Runner processes one bill at a time and must not
// be shared by concurrent runs.
type Runner struct {
	deps Deps
}

// New wires a Runner.
func New(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// Run processes the candidate bills selected by opts. Per-version problems
// become report entries; a sink failure ends the run unless opts.Isolation
// is IsolateDocument.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()
	log := logger.Component(r.deps.Log, "pipeline")
	if opts.Debug {
		log = log.Level(zerolog.DebugLevel)
	}
	session := opts.Session
	if session == 0 {
		session = r.deps.CurrentSession
	}
	if opts.BillID != "" {
		// The bill id carries its own session.
		ref, err := model.ParseBillID(opts.BillID)
		if err != nil {
			return nil, err
		}
		session = ref.Session
	}
	isolation := opts.Isolation
	if isolation == "" {
		isolation = config.IsolateBatch
	}

	rep := report.New(ReportSource, r.deps.Emitters...)
	log = log.With().Str("run_id", rep.RunID()).Logger()
	writer := r.deps.Writer.ForRun(log)

	if opts.RearchiveSession > 0 {
		if _, err := writer.Reindex(ctx, opts.RearchiveSession); err != nil {
			return nil, err
		}
	}

	bills, err := r.deps.Store.CandidateBills(ctx, sink.CandidateQuery{
		Session: session,
		BillID:  opts.BillID,
		Limit:   opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("load candidate bills: %w", err)
	}

	if opts.BillID != "" && len(bills) == 0 {
		rep.Note("Bill not found", map[string]any{"bill_id": opts.BillID, "session": session})
		log.Warn().Str("bill_id", opts.BillID).Msg("requested bill is missing or abbreviated")
	}
	log.Info().Int("session", session).Int("bills", len(bills)).Msg("run started")

	res := &Result{RunID: rep.RunID(), Session: session}
	for _, bill := range bills {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		versions, err := r.indexBill(ctx, writer, bill, rep, logger.Bill(log, bill.BillID))
		if err != nil {
			r.deps.Metrics.RecordBill(outcomeFailed)
			if isolation != config.IsolateDocument {
				return nil, fmt.Errorf("bill %s: %w", bill.BillID, err)
			}
			res.Failures++
			rep.Warn("Failed to write bill", map[string]any{"bill_id": bill.BillID, "error": err.Error()})
			log.Error().Err(err).Str("bill_id", bill.BillID).Msg("bill failed, continuing")
			continue
		}
		res.Counts.Versions += versions
		if versions > 0 {
			res.Counts.Bills++
		}
	}

	if err := writer.Refresh(ctx); err != nil {
		return nil, err
	}

	bundles, err := rep.Finish(ctx, res.Counts)
	res.Bundles = bundles
	if err != nil {
		log.Error().Err(err).Msg("report emission failed")
	}

	finished := time.Now()
	r.deps.Metrics.RecordRun(finished, finished.Sub(started))
	log.Info().
		Int("bills", res.Counts.Bills).
		Int("versions", res.Counts.Versions).
		Int("failures", res.Failures).
		Dur("took", finished.Sub(started)).
		Msg("run finished")
	return res, nil
}

// indexBill returns the number of versions written. Only sink failures are
// returned as errors; everything else is reported.
func (r *Runner) indexBill(ctx context.Context, writer *sink.Writer, bill model.Bill, rep *report.Reporter, log zerolog.Logger) (int, error) {
	ref, err := model.ParseBillID(bill.BillID)
	if err != nil {
		rep.Warn("Invalid bill id", map[string]any{"bill_id": bill.BillID, "error": err.Error()})
		r.deps.Metrics.RecordBill(outcomeRejected)
		return 0, nil
	}

	files, err := r.deps.Layout.Discover(ref)
	if err != nil {
		rep.Warn("Failed to list version files", map[string]any{"bill_id": bill.BillID, "error": err.Error()})
		r.deps.Metrics.RecordBill(outcomeSkipped)
		return 0, nil
	}
	if len(files) == 0 {
		rep.Note("No version files found for bill", map[string]any{"bill_id": bill.BillID})
		r.deps.Metrics.RecordBill(outcomeSkipped)
		log.Debug().Msg("no version files")
		return 0, nil
	}

	built := make([]model.VersionRecord, 0, len(files))
	for _, f := range files {
		rec, ok := r.buildVersion(ctx, ref, bill, f, rep, log)
		if !ok {
			continue
		}
		if err := writer.WriteVersion(ctx, rec); err != nil {
			return 0, err
		}
		r.deps.Metrics.RecordVersion(len(rec.CitationIDs))
		built = append(built, rec)
	}

	rollup, err := aggregate.Rollup(bill.BillID, built)
	if errors.Is(err, aggregate.ErrNoVersions) {
		rep.Warn("No valid versions for bill", map[string]any{"bill_id": bill.BillID, "files": len(files)})
		r.deps.Metrics.RecordBill(outcomeRejected)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := writer.WriteDocument(ctx, bill, rollup); err != nil {
		return 0, err
	}
	r.deps.Metrics.RecordBill(outcomeIndexed)
	log.Debug().Int("versions", len(built)).Str("last_version", rollup.LastVersion.Code).Msg("bill indexed")
	return len(built), nil
}

// buildVersion resolves, reads and builds one version. ok is false when the
// version was dropped; the reason is already on the report.
func (r *Runner) buildVersion(ctx context.Context, ref model.BillRef, bill model.Bill, f model.VersionFile, rep *report.Reporter, log zerolog.Logger) (model.VersionRecord, bool) {
	versionID := f.VersionID()
	log = log.With().Str("bill_version_id", versionID).Logger()
	log.Debug().Str("path", f.Path).Str("format", f.Format).Msg("version file discovered")

	src, err := r.deps.Layout.ReadSources(ref, f.Code)
	if err != nil {
		rep.Warn("Failed to read version metadata", map[string]any{"bill_version_id": versionID, "error": err.Error()})
		r.deps.Metrics.RecordRejection("metadata_unreadable")
		return model.VersionRecord{}, false
	}
	meta, err := r.deps.Resolver.Resolve(src)
	if err != nil {
		var rejection *metadata.RejectionError
		if errors.As(err, &rejection) && rejection.Suppressed {
			log.Debug().Msg("no issue date, suppressed")
		} else {
			rep.Warn("No valid issue date found for version", map[string]any{"bill_version_id": versionID})
		}
		r.deps.Metrics.RecordRejection("no_date")
		return model.VersionRecord{}, false
	}
	log.Debug().Str("strategy", meta.Source).Stringer("issued_on", meta.IssuedOn).Msg("issue date resolved")

	raw, err := source.ReadText(f)
	if err != nil {
		rep.Warn("Failed to read version text", map[string]any{"bill_version_id": versionID, "error": err.Error()})
		r.deps.Metrics.RecordRejection("no_text")
		return model.VersionRecord{}, false
	}

	rec, warnings, err := r.deps.Builder.Build(ctx, version.Input{
		File:     f,
		Metadata: meta,
		Text:     normalize.Text(raw),
		Bill:     bill,
	})
	if err != nil {
		rep.Warn("Failed to build version", map[string]any{"bill_version_id": versionID, "error": err.Error()})
		r.deps.Metrics.RecordRejection("build_failed")
		return model.VersionRecord{}, false
	}
	for _, w := range warnings {
		rep.Add(report.StatusWarning, w)
	}
	log.Debug().Int("citations", len(rec.CitationIDs)).Msg("version built")
	return rec, true
}
