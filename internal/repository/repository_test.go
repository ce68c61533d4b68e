package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	"github.com/dharsanguruparan/BillIndex/internal/sink"
	"github.com/dharsanguruparan/BillIndex/internal/storage"
)

func TestJSONHelpers(t *testing.T) {
	var codes []string
	got, err := jsonList(codes)
	if err != nil || string(got) != "[]" {
		t.Fatalf("nil slice: %s %v", got, err)
	}
	got, err = jsonList([]string{"ih", "rh"})
	if err != nil || string(got) != `["ih","rh"]` {
		t.Fatalf("slice: %s %v", got, err)
	}

	var sponsor *model.Sponsor
	got, err = jsonOrNull(sponsor)
	if err != nil || got != nil {
		t.Fatalf("nil pointer should be NULL: %s %v", got, err)
	}
	got, err = jsonOrNull(&model.Sponsor{Name: "Rep. Smith"})
	if err != nil || string(got) != `{"name":"Rep. Smith"}` {
		t.Fatalf("pointer: %s %v", got, err)
	}
}

func TestDateOrNull(t *testing.T) {
	if dateOrNull(model.Date{}) != nil {
		t.Fatal("zero date should be NULL")
	}
	d := dateOrNull(model.NewDate(2013, time.January, 3))
	if d == nil || d.Format("2006-01-02") != "2013-01-03" {
		t.Fatalf("unexpected %v", d)
	}
}

func TestNonNilMap(t *testing.T) {
	if m := nonNilMap(nil); m == nil || len(m) != 0 {
		t.Fatal("expected empty map")
	}
}

type execCall struct {
	sql  string
	args []any
}

// fakeDB answers Exec with a fixed command tag and QueryRow with a row that
// fails with rowErr.
type fakeDB struct {
	tag    string
	rowErr error
	execs  []execCall
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("connection refused")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{err: f.rowErr}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

func TestCandidateQuery(t *testing.T) {
	cases := []struct {
		name     string
		q        sink.CandidateQuery
		contains []string
		absent   []string
		args     []any
	}{
		{
			name:     "session only",
			q:        sink.CandidateQuery{Session: 113},
			contains: []string{"session=$1", "NOT abbreviated", "NOT indexed", "ORDER BY bill_id"},
			absent:   []string{"bill_id=$", "LIMIT"},
			args:     []any{113},
		},
		{
			name:     "limit",
			q:        sink.CandidateQuery{Session: 113, Limit: 25},
			contains: []string{"NOT indexed", "LIMIT $2"},
			args:     []any{113, 25},
		},
		{
			name:     "bill id ignores indexed",
			q:        sink.CandidateQuery{Session: 111, BillID: "hr3590-111"},
			contains: []string{"bill_id=$2", "NOT abbreviated"},
			absent:   []string{"NOT indexed", "LIMIT"},
			args:     []any{111, "hr3590-111"},
		},
		{
			name:     "bill id with limit",
			q:        sink.CandidateQuery{Session: 111, BillID: "hr3590-111", Limit: 1},
			contains: []string{"bill_id=$2", "LIMIT $3"},
			args:     []any{111, "hr3590-111", 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := candidateQuery(tc.q)
			for _, want := range tc.contains {
				if !strings.Contains(query, want) {
					t.Errorf("query missing %q: %s", want, query)
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(query, unwanted) {
					t.Errorf("query should not contain %q: %s", unwanted, query)
				}
			}
			if !reflect.DeepEqual(args, tc.args) {
				t.Errorf("args %v, want %v", args, tc.args)
			}
		})
	}
}

func TestSaveRollupUnknownBill(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 0"}
	err := NewStore(db).SaveRollup(context.Background(), "hr9-113", model.Rollup{BillID: "hr9-113"}, time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRollupArgs(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 1"}
	now := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	r := model.Rollup{
		BillID:        "hr1-113",
		VersionCodes:  []string{"ih", "rh"},
		VersionsCount: 2,
		LastVersion:   model.VersionSummary{Code: "rh"},
		LastVersionOn: model.NewDate(2013, time.April, 10),
	}
	if err := NewStore(db).SaveRollup(context.Background(), "hr1-113", r, now); err != nil {
		t.Fatalf("save rollup: %v", err)
	}
	if len(db.execs) != 1 {
		t.Fatalf("expected one statement, got %d", len(db.execs))
	}
	call := db.execs[0]
	if !strings.Contains(call.sql, "indexed=TRUE") {
		t.Fatalf("rollup must set indexed: %s", call.sql)
	}
	if got := string(call.args[0].([]byte)); got != `["ih","rh"]` {
		t.Fatalf("version codes %s", got)
	}
	if got := string(call.args[4].([]byte)); got != "[]" {
		t.Fatalf("nil citation ids should be stored as [], got %s", got)
	}
	if d := call.args[3].(*time.Time); d == nil || d.Format("2006-01-02") != "2013-04-10" {
		t.Fatalf("last version date %v", d)
	}
	if call.args[8] != "hr1-113" {
		t.Fatalf("bill id arg %v", call.args[8])
	}
}

func TestResetIndexedReturnsRowCount(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 7"}
	n, err := NewStore(db).ResetIndexed(context.Background(), 113)
	if err != nil || n != 7 {
		t.Fatalf("reset: n=%d err=%v", n, err)
	}
	if db.execs[0].args[0] != 113 {
		t.Fatalf("session arg %v", db.execs[0].args[0])
	}
}

func TestGetBillNotFound(t *testing.T) {
	db := &fakeDB{rowErr: pgx.ErrNoRows}
	if _, err := NewStore(db).GetBill(context.Background(), "hr9-113"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCandidateBillsWrapsQueryError(t *testing.T) {
	_, err := NewStore(&fakeDB{}).CandidateBills(context.Background(), sink.CandidateQuery{Session: 113})
	if err == nil || !strings.Contains(err.Error(), "select candidate bills") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSaveVersionUpsertsByID(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	rec := model.VersionRecord{
		BillVersionID: "hr1-113-ih",
		BillID:        "hr1-113",
		Code:          "ih",
		IssuedOn:      model.NewDate(2013, time.January, 3),
	}
	if err := NewStore(db).SaveVersion(context.Background(), rec); err != nil {
		t.Fatalf("save version: %v", err)
	}
	call := db.execs[0]
	if !strings.Contains(call.sql, "ON CONFLICT (bill_version_id) DO UPDATE") {
		t.Fatalf("save must overwrite by id: %s", call.sql)
	}
	if got := string(call.args[5].([]byte)); got != "{}" {
		t.Fatalf("nil urls should be stored as {}, got %s", got)
	}
}
