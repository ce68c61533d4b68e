package citation

import (
	"context"
	"reflect"
	"testing"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

func TestBluebookExtractor(t *testing.T) {
	extractor := NewBluebookExtractor()

	cases := []struct {
		name    string
		text    string
		wantIDs []string
	}{
		{
			name:    "usc without section symbol",
			text:    "Section 1886(d) of the Social Security Act (42 U.S.C. 1395ww(d)) is amended",
			wantIDs: []string{"usc/42/1395ww"},
		},
		{
			name:    "usc with section symbol",
			text:    "pursuant to 42 U.S.C. § 1983",
			wantIDs: []string{"usc/42/1983"},
		},
		{
			name:    "usc with dashed section",
			text:    "as defined in 42 U.S.C. 1320d-2",
			wantIDs: []string{"usc/42/1320d-2"},
		},
		{
			name:    "usc section word",
			text:    "under 15 U.S.C. Section 1681",
			wantIDs: []string{"usc/15/1681"},
		},
		{
			name:    "cfr",
			text:    "regulations at 45 C.F.R. Part 164 and 21 C.F.R. § 50.25",
			wantIDs: []string{"cfr/45/164", "cfr/21/50.25"},
		},
		{
			name:    "public law",
			text:    "the Patient Protection and Affordable Care Act (Public Law 111-148)",
			wantIDs: []string{"law/111/148"},
		},
		{
			name:    "ordered by offset across kinds",
			text:    "Public Law 104-191; 42 U.S.C. 1320d",
			wantIDs: []string{"law/104/191", "usc/42/1320d"},
		},
		{
			name: "no citations",
			text: "To designate the facility of the United States Postal Service.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches, err := extractor.Extract(context.Background(), tc.text)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			var ids []string
			for _, m := range matches {
				ids = append(ids, m.CitationID)
			}
			if !reflect.DeepEqual(ids, tc.wantIDs) {
				t.Fatalf("got %v want %v", ids, tc.wantIDs)
			}
		})
	}
}

func TestBluebookExtractorOffsets(t *testing.T) {
	text := "see 42 U.S.C. 1983 and again 42 U.S.C. 1983"
	matches, err := NewBluebookExtractor().Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two raw matches, got %d", len(matches))
	}
	for _, m := range matches {
		if text[m.Index:m.Index+m.Length] != m.Text {
			t.Fatalf("offset mismatch for %+v", m)
		}
	}
}

func TestBluebookExtractorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBluebookExtractor().Extract(ctx, "42 U.S.C. 1983"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestDedupeByIdentifier(t *testing.T) {
	matches := []model.Citation{
		{CitationID: "usc/42/1983", Index: 4, Length: 14},
		{CitationID: "law/111/148", Index: 30, Length: 18},
		{CitationID: "usc/42/1983", Index: 60, Length: 14},
	}
	unique, ids := Dedupe(matches)
	if want := []string{"usc/42/1983", "law/111/148"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids: got %v want %v", ids, want)
	}
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique matches, got %d", len(unique))
	}
	if unique[0].Index != 4 {
		t.Fatalf("expected first occurrence to be kept, got index %d", unique[0].Index)
	}
}

func TestDedupeEmpty(t *testing.T) {
	unique, ids := Dedupe(nil)
	if len(unique) != 0 || len(ids) != 0 {
		t.Fatalf("expected empty results")
	}
}
