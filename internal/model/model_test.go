package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseBillID(t *testing.T) {
	cases := []struct {
		id      string
		want    BillRef
		wantErr bool
	}{
		{id: "hr3590-111", want: BillRef{Type: "hr", Number: 3590, Session: 111}},
		{id: "sconres12-113", want: BillRef{Type: "sconres", Number: 12, Session: 113}},
		{id: "hjres1-118", want: BillRef{Type: "hjres", Number: 1, Session: 118}},
		{id: "xx1-111", wantErr: true},
		{id: "hr-111", wantErr: true},
		{id: "hr3590", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseBillID(tc.id)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Fatalf("%s: expected ErrInvalidID, got %v", tc.id, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %+v want %+v", tc.id, got, tc.want)
		}
		if got.ID() != tc.id {
			t.Fatalf("round trip: got %s want %s", got.ID(), tc.id)
		}
	}
}

func TestParseVersionID(t *testing.T) {
	ref, code, err := ParseVersionID("hr3590-111-enr")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ref.ID() != "hr3590-111" || code != "enr" {
		t.Fatalf("got %s %s", ref.ID(), code)
	}
	if _, _, err := ParseVersionID("hr3590-111"); err == nil {
		t.Fatalf("expected error for id without code")
	}
}

func TestVersionName(t *testing.T) {
	if got := VersionName("enr"); got != "Enrolled Bill" {
		t.Fatalf("got %q", got)
	}
	if got := VersionName("zz"); got != "zz" {
		t.Fatalf("unknown code should pass through, got %q", got)
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	a := DateOf(time.Date(2020, 3, 1, 23, 30, 0, 0, est))
	b := DateOf(time.Date(2020, 3, 1, 0, 0, 1, 0, time.UTC))
	if a != b {
		t.Fatalf("expected equal dates, got %s and %s", a, b)
	}
	if a.String() != "2020-03-01" {
		t.Fatalf("got %s", a)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2020, time.February, 14)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2020-02-14"` {
		t.Fatalf("got %s", raw)
	}
	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Fatalf("got %s want %s", back, d)
	}
	var zero Date
	raw, _ = json.Marshal(zero)
	if string(raw) != "null" {
		t.Fatalf("zero date should encode as null, got %s", raw)
	}
}

func TestApplyRollupMarksIndexed(t *testing.T) {
	bill := Bill{BillID: "hr1-111"}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bill.ApplyRollup(Rollup{
		BillID:        "hr1-111",
		VersionCodes:  []string{"ih", "enr"},
		VersionsCount: 2,
		LastVersion:   VersionSummary{Code: "enr"},
		LastVersionOn: NewDate(2010, 3, 23),
		CitationIDs:   []string{"usc/42/18001"},
	}, now)
	if !bill.Indexed || bill.VersionsCount != 2 || bill.LastVersion.Code != "enr" {
		t.Fatalf("rollup not applied: %+v", bill)
	}
	if !bill.UpdatedAt.Equal(now) {
		t.Fatalf("updated at not set")
	}
}
