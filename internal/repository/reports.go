package repository

import (
	"context"
	"fmt"

	"github.com/dharsanguruparan/BillIndex/internal/report"
)

// ReportEmitter persists run report bundles to the reports table.
type ReportEmitter struct {
	store *Store
}

var _ report.Emitter = ReportEmitter{}

// Reports returns an emitter writing through this store's pool.
func (s *Store) Reports() ReportEmitter {
	return ReportEmitter{store: s}
}

// Emit inserts one row per bundle.
func (e ReportEmitter) Emit(ctx context.Context, b report.Bundle) error {
	entries, err := jsonList(b.Entries)
	if err != nil {
		return err
	}
	var bills, versions *int
	if b.Counts != nil {
		bills, versions = &b.Counts.Bills, &b.Counts.Versions
	}
	_, err = e.store.pool.Exec(ctx, `
		INSERT INTO reports (run_id, source, status, message, entries, bills, versions, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, b.RunID, b.Source, b.Status, b.Message, entries, bills, versions, b.At)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}
