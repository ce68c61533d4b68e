package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
)

func seed(store *MemoryStore) {
	store.SaveBill(model.Bill{BillID: "hr1-113", Session: 113})
	store.SaveBill(model.Bill{BillID: "hr2-113", Session: 113, Indexed: true})
	store.SaveBill(model.Bill{BillID: "hr3-113", Session: 113, Abbreviated: true})
	store.SaveBill(model.Bill{BillID: "s1-113", Session: 113})
	store.SaveBill(model.Bill{BillID: "hr1-112", Session: 112})
}

func ids(bills []model.Bill) []string {
	var out []string
	for _, b := range bills {
		out = append(out, b.BillID)
	}
	return out
}

func TestCandidateBills(t *testing.T) {
	store := NewMemoryStore()
	seed(store)
	ctx := context.Background()

	cases := []struct {
		name string
		q    sink.CandidateQuery
		want []string
	}{
		{name: "unindexed in session", q: sink.CandidateQuery{Session: 113}, want: []string{"hr1-113", "s1-113"}},
		{name: "limit", q: sink.CandidateQuery{Session: 113, Limit: 1}, want: []string{"hr1-113"}},
		{name: "single bill ignores indexed", q: sink.CandidateQuery{Session: 113, BillID: "hr2-113"}, want: []string{"hr2-113"}},
		{name: "abbreviated never", q: sink.CandidateQuery{Session: 113, BillID: "hr3-113"}, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.CandidateBills(ctx, tc.q)
			if err != nil {
				t.Fatalf("candidates: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", ids(got), tc.want)
			}
			for i := range got {
				if got[i].BillID != tc.want[i] {
					t.Fatalf("got %v want %v", ids(got), tc.want)
				}
			}
		})
	}
}

func TestResetIndexed(t *testing.T) {
	store := NewMemoryStore()
	seed(store)
	n, err := store.ResetIndexed(context.Background(), 113)
	if err != nil || n != 4 {
		t.Fatalf("reset: n=%d err=%v", n, err)
	}
	b, _ := store.GetBill(context.Background(), "hr2-113")
	if b.Indexed {
		t.Fatalf("hr2-113 still indexed")
	}
}

func TestSaveRollupUnknownBill(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveRollup(context.Background(), "hr9-113", model.Rollup{}, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveVersionOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.SaveVersion(ctx, model.VersionRecord{BillVersionID: "hr1-113-ih", BillID: "hr1-113", FullText: "old", CitationIDs: []string{"a"}})
	_ = store.SaveVersion(ctx, model.VersionRecord{BillVersionID: "hr1-113-ih", BillID: "hr1-113", FullText: "new"})
	rec, err := store.Version("hr1-113-ih")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if rec.FullText != "new" || len(rec.CitationIDs) != 0 {
		t.Fatalf("expected full replacement, got %+v", rec)
	}
	if len(store.Versions("hr1-113")) != 1 {
		t.Fatalf("expected one record")
	}
}
