// Package storage contains the in-memory document store used by tests and by
// dry runs that have no database configured.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
)

var (
	// ErrNotFound is returned for unknown bill or version ids.
	ErrNotFound = errors.New("not found")
)

// MemoryStore keeps bills and version records in maps guarded by an RWMutex.
type MemoryStore struct {
	mu        sync.RWMutex
	bills     map[string]*model.Bill
	versions  map[string]model.VersionRecord
	refreshes int
}

var _ sink.DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bills:    make(map[string]*model.Bill),
		versions: make(map[string]model.VersionRecord),
	}
}

// SaveBill inserts or replaces a bill.
func (m *MemoryStore) SaveBill(b model.Bill) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	m.bills[b.BillID] = &b
}

// CandidateBills returns unindexed, non-abbreviated bills of a session
// ordered by id.
func (m *MemoryStore) CandidateBills(_ context.Context, q sink.CandidateQuery) ([]model.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Bill
	for _, b := range m.bills {
		if b.Session != q.Session || b.Abbreviated {
			continue
		}
		if q.BillID != "" {
			if b.BillID != q.BillID {
				continue
			}
		} else if b.Indexed {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillID < out[j].BillID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// ResetIndexed clears the indexed flag for every bill in a session.
func (m *MemoryStore) ResetIndexed(_ context.Context, session int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bills {
		if b.Session == session {
			b.Indexed = false
			n++
		}
	}
	return n, nil
}

// GetBill returns a copy of a bill.
func (m *MemoryStore) GetBill(_ context.Context, billID string) (*model.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bills[billID]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *b
	return &copy, nil
}

// SaveVersion creates or replaces a version record.
func (m *MemoryStore) SaveVersion(_ context.Context, rec model.VersionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[rec.BillVersionID] = rec
	return nil
}

// SaveRollup applies a rollup and marks the bill indexed.
func (m *MemoryStore) SaveRollup(_ context.Context, billID string, r model.Rollup, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.ApplyRollup(r, now)
	return nil
}

// Refresh counts barriers; map writes are visible immediately.
func (m *MemoryStore) Refresh(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return nil
}

// Refreshes reports how many barriers were issued.
func (m *MemoryStore) Refreshes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshes
}

// Version returns a stored version record.
func (m *MemoryStore) Version(id string) (model.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.versions[id]
	if !ok {
		return model.VersionRecord{}, ErrNotFound
	}
	return rec, nil
}

// Versions returns the stored records of one bill ordered by id.
func (m *MemoryStore) Versions(billID string) []model.VersionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.VersionRecord
	for _, rec := range m.versions {
		if rec.BillID == billID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillVersionID < out[j].BillVersionID })
	return out
}
