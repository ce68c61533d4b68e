package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// SaveVersion inserts the record or overwrites every column of the existing
// row with the same bill_version_id.
func (s *Store) SaveVersion(ctx context.Context, rec model.VersionRecord) error {
	urls, err := json.Marshal(nonNilMap(rec.URLs))
	if err != nil {
		return fmt.Errorf("marshal urls: %w", err)
	}
	cites, err := jsonList(rec.Citations)
	if err != nil {
		return err
	}
	ids, err := jsonList(rec.CitationIDs)
	if err != nil {
		return err
	}
	bill, err := json.Marshal(rec.Bill)
	if err != nil {
		return fmt.Errorf("marshal bill summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO bill_versions (bill_version_id, bill_id, version_code, version_name, issued_on, urls, full_text, citations, citation_ids, bill, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (bill_version_id) DO UPDATE SET
			bill_id=EXCLUDED.bill_id,
			version_code=EXCLUDED.version_code,
			version_name=EXCLUDED.version_name,
			issued_on=EXCLUDED.issued_on,
			urls=EXCLUDED.urls,
			full_text=EXCLUDED.full_text,
			citations=EXCLUDED.citations,
			citation_ids=EXCLUDED.citation_ids,
			bill=EXCLUDED.bill,
			updated_at=EXCLUDED.updated_at
	`, rec.BillVersionID, rec.BillID, rec.Code, rec.Name, rec.IssuedOn.Time(), urls, rec.FullText, cites, ids, bill, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert version: %w", err)
	}
	return nil
}

// jsonList marshals a slice, encoding nil as an empty array so the NOT NULL
// JSONB columns never hold null.
func jsonList(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal list: %w", err)
	}
	return data, nil
}

// jsonOrNull marshals a pointer, mapping nil to SQL NULL.
func jsonOrNull(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func dateOrNull(d model.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
