// Package sink persists version records and bill rollups to the document
// store and the search index. The two stores share no transaction, so every
// write goes to the search index first and the document store second: a
// bill is only marked indexed once its search data exists.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/BillIndex/internal/metrics"
	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// Search index collections.
const (
	CollectionBills    = "bills"
	CollectionVersions = "bill_versions"
)

const (
	sinkDocuments = "document_store"
	sinkSearch    = "search_index"
)

// CandidateQuery selects the bills a run should process. A BillID filter
// ignores the indexed flag so a single bill can always be redone.
type CandidateQuery struct {
	Session int
	BillID  string
	Limit   int
}

// DocumentStore is the system of record for bills and version records.
type DocumentStore interface {
	CandidateBills(ctx context.Context, q CandidateQuery) ([]model.Bill, error)
	ResetIndexed(ctx context.Context, session int) (int64, error)
	GetBill(ctx context.Context, billID string) (*model.Bill, error)
	// SaveVersion creates or fully replaces the record keyed by
	// BillVersionID.
	SaveVersion(ctx context.Context, rec model.VersionRecord) error
	// SaveRollup applies the rollup to the bill and sets indexed = true.
	SaveRollup(ctx context.Context, billID string, r model.Rollup, now time.Time) error
	Refresh(ctx context.Context) error
}

// SearchIndex stores JSON documents by key in named collections.
type SearchIndex interface {
	// Upsert fully replaces whatever was stored under key.
	Upsert(ctx context.Context, collection, key string, doc any) error
	// Refresh makes everything written so far queryable.
	Refresh(ctx context.Context, collection string) error
}

// Writer applies the ordering contract over both sinks.
type Writer struct {
	docs    DocumentStore
	index   SearchIndex
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewWriter wires a writer. m may be nil.
func NewWriter(docs DocumentStore, index SearchIndex, m *metrics.Metrics, log zerolog.Logger) *Writer {
	return &Writer{
		docs:    docs,
		index:   index,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// ForRun returns a copy of the writer that logs through l, so a run's level
// and fields apply to its sink traces.
func (w *Writer) ForRun(l zerolog.Logger) *Writer {
	c := *w
	c.log = l
	return &c
}

// WriteVersion stores one version record in both sinks.
func (w *Writer) WriteVersion(ctx context.Context, rec model.VersionRecord) error {
	err := w.timed(sinkSearch, CollectionVersions, func() error {
		return w.index.Upsert(ctx, CollectionVersions, rec.BillVersionID, rec)
	})
	if err != nil {
		return fmt.Errorf("index version %s: %w", rec.BillVersionID, err)
	}
	err = w.timed(sinkDocuments, CollectionVersions, func() error {
		return w.docs.SaveVersion(ctx, rec)
	})
	if err != nil {
		return fmt.Errorf("store version %s: %w", rec.BillVersionID, err)
	}
	w.log.Debug().Str("bill_version_id", rec.BillVersionID).Msg("version written")
	return nil
}

// WriteDocument stores the rollup under the bill id in the search index,
// then commits it to the document store together with indexed = true.
func (w *Writer) WriteDocument(ctx context.Context, bill model.Bill, r model.Rollup) error {
	now := w.now()
	doc := model.NewSearchDocument(bill.Curated(), r, now)
	err := w.timed(sinkSearch, CollectionBills, func() error {
		return w.index.Upsert(ctx, CollectionBills, bill.BillID, doc)
	})
	if err != nil {
		return fmt.Errorf("index bill %s: %w", bill.BillID, err)
	}
	err = w.timed(sinkDocuments, CollectionBills, func() error {
		return w.docs.SaveRollup(ctx, bill.BillID, r, now)
	})
	if err != nil {
		return fmt.Errorf("store bill %s: %w", bill.BillID, err)
	}
	w.log.Debug().Str("bill_id", bill.BillID).Int("versions", r.VersionsCount).Msg("bill written")
	return nil
}

// Reindex clears the indexed flag of every bill in a session so the next
// run rebuilds all of their versions from scratch.
func (w *Writer) Reindex(ctx context.Context, session int) (int64, error) {
	n, err := w.docs.ResetIndexed(ctx, session)
	if err != nil {
		return 0, fmt.Errorf("reset session %d: %w", session, err)
	}
	w.log.Info().Int("session", session).Int64("bills", n).Msg("session flagged for reindexing")
	return n, nil
}

// Refresh is the end-of-run barrier on both sinks.
func (w *Writer) Refresh(ctx context.Context) error {
	for _, collection := range []string{CollectionVersions, CollectionBills} {
		if err := w.index.Refresh(ctx, collection); err != nil {
			return fmt.Errorf("refresh %s: %w", collection, err)
		}
	}
	if err := w.docs.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh document store: %w", err)
	}
	return nil
}

func (w *Writer) timed(sink, collection string, fn func() error) error {
	start := time.Now()
	err := fn()
	w.metrics.RecordSinkWrite(sink, collection, err, time.Since(start))
	return err
}
