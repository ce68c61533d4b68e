// Package repository is the Postgres document store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
	"github.com/dharsanguruparan/BillIndex/internal/storage"
)

// DBTX is the subset of *pgxpool.Pool the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DBTX = (*pgxpool.Pool)(nil)

// Store wraps all SQL used by the pipeline, the worker and the admin API.
type Store struct {
	pool DBTX
}

var _ sink.DocumentStore = (*Store)(nil)

// NewStore constructs a repository over a pool or a transaction.
func NewStore(pool DBTX) *Store {
	return &Store{pool: pool}
}

const billColumns = `bill_id, bill_type, number, session, abbreviated, indexed, sponsor, summary,
	keywords, last_action, version_codes, versions_count, last_version, last_version_on,
	citation_ids, citations, version_info, updated_at`

// candidateQuery builds the candidate selection. A bill id filter replaces
// the indexed predicate.
func candidateQuery(q sink.CandidateQuery) (string, []any) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE session=$1 AND NOT abbreviated`
	args := []any{q.Session}
	if q.BillID != "" {
		args = append(args, q.BillID)
		query += fmt.Sprintf(` AND bill_id=$%d`, len(args))
	} else {
		query += ` AND NOT indexed`
	}
	query += ` ORDER BY bill_id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return query, args
}

// CandidateBills returns the bills a run should process, ordered by id.
func (s *Store) CandidateBills(ctx context.Context, q sink.CandidateQuery) ([]model.Bill, error) {
	query, args := candidateQuery(q)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select candidate bills: %w", err)
	}
	defer rows.Close()
	var out []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate bills: %w", err)
	}
	return out, nil
}

// ResetIndexed clears the indexed flag for a whole session.
func (s *Store) ResetIndexed(ctx context.Context, session int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE bills SET indexed=FALSE WHERE session=$1`, session)
	if err != nil {
		return 0, fmt.Errorf("reset indexed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetBill returns a bill by id.
func (s *Store) GetBill(ctx context.Context, billID string) (*model.Bill, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE bill_id=$1`, billID)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// SaveRollup stores the derived fields and sets indexed in one statement.
func (s *Store) SaveRollup(ctx context.Context, billID string, r model.Rollup, now time.Time) error {
	var b model.Bill
	b.ApplyRollup(r, now)

	codes, err := jsonList(b.VersionCodes)
	if err != nil {
		return err
	}
	last, err := jsonOrNull(b.LastVersion)
	if err != nil {
		return err
	}
	ids, err := jsonList(b.CitationIDs)
	if err != nil {
		return err
	}
	cites, err := jsonList(b.Citations)
	if err != nil {
		return err
	}
	info, err := jsonList(b.VersionInfo)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE bills SET
			version_codes=$1,
			versions_count=$2,
			last_version=$3,
			last_version_on=$4,
			citation_ids=$5,
			citations=$6,
			version_info=$7,
			indexed=TRUE,
			updated_at=$8
		WHERE bill_id=$9
	`, codes, b.VersionsCount, last, dateOrNull(b.LastVersionOn), ids, cites, info, now, billID)
	if err != nil {
		return fmt.Errorf("update bill rollup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// Refresh updates planner statistics after a batch of writes. Postgres
// commits are visible immediately.
func (s *Store) Refresh(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `ANALYZE bills, bill_versions`); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}

func scanBill(row pgx.Row) (*model.Bill, error) {
	var (
		b             model.Bill
		lastVersionOn *time.Time
	)
	var sponsor, lastAction, lastVersion []byte
	var keywords, codes, ids, cites, versionInfo []byte
	err := row.Scan(&b.BillID, &b.BillType, &b.Number, &b.Session, &b.Abbreviated, &b.Indexed,
		&sponsor, &b.Summary, &keywords, &lastAction, &codes, &b.VersionsCount, &lastVersion,
		&lastVersionOn, &ids, &cites, &versionInfo, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bill: %w", err)
	}
	fields := []struct {
		data []byte
		dst  any
	}{
		{sponsor, &b.Sponsor},
		{lastAction, &b.LastAction},
		{lastVersion, &b.LastVersion},
		{keywords, &b.Keywords},
		{codes, &b.VersionCodes},
		{ids, &b.CitationIDs},
		{cites, &b.Citations},
		{versionInfo, &b.VersionInfo},
	}
	for _, f := range fields {
		if len(f.data) == 0 {
			continue
		}
		if err := json.Unmarshal(f.data, f.dst); err != nil {
			return nil, fmt.Errorf("decode bill %s: %w", b.BillID, err)
		}
	}
	if lastVersionOn != nil {
		b.LastVersionOn = model.DateOf(*lastVersionOn)
	}
	return &b, nil
}
