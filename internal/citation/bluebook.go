package citation

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// Citation types produced by the Bluebook extractor.
const (
	TypeUSC       = "usc"
	TypeCFR       = "cfr"
	TypePublicLaw = "law"
)

// BluebookExtractor recognizes the statutory citation forms that appear in
// federal bill text:
//   - U.S. Code: "42 U.S.C. 1395ww", "42 U.S.C. § 1983", "15 U.S.C. Section 1681"
//   - C.F.R.: "45 C.F.R. Part 164", "21 C.F.R. § 50.25"
//   - Public Laws: "Public Law 111-148", "Pub. L. 104-191"
type BluebookExtractor struct {
	uscPattern       *regexp.Regexp
	cfrPattern       *regexp.Regexp
	publicLawPattern *regexp.Regexp
}

// NewBluebookExtractor compiles the citation patterns.
func NewBluebookExtractor() *BluebookExtractor {
	return &BluebookExtractor{
		uscPattern:       regexp.MustCompile(`(\d+)\s+U\.\s?S\.\s?C\.\s+(?:§§?\s*|(?:Section|Sec\.)\s+)?(\d+[a-zA-Z]*(?:-\d+[a-zA-Z]*)?)`),
		cfrPattern:       regexp.MustCompile(`(\d+)\s+C\.\s?F\.\s?R\.\s+(?:Parts?\s+|§§?\s*)?(\d+(?:\.\d+)?)`),
		publicLawPattern: regexp.MustCompile(`(?:Public\s+Law|Pub\.\s*L\.|P\.\s?L\.)\s+(\d+)[-–](\d+)`),
	}
}

// Extract returns every citation in text ordered by offset.
func (e *BluebookExtractor) Extract(ctx context.Context, text string) ([]model.Citation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract citations: %w", err)
	}
	var citations []model.Citation
	citations = append(citations, e.scan(text, e.uscPattern, TypeUSC)...)
	citations = append(citations, e.scan(text, e.cfrPattern, TypeCFR)...)
	citations = append(citations, e.scan(text, e.publicLawPattern, TypePublicLaw)...)
	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Index < citations[j].Index
	})
	return citations, nil
}

func (e *BluebookExtractor) scan(text string, pattern *regexp.Regexp, kind string) []model.Citation {
	var citations []model.Citation
	for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
		first := text[idx[2]:idx[3]]
		second := text[idx[4]:idx[5]]
		citations = append(citations, model.Citation{
			CitationID: fmt.Sprintf("%s/%s/%s", kind, first, second),
			Type:       kind,
			Text:       text[idx[0]:idx[1]],
			Title:      first,
			Section:    second,
			Index:      idx[0],
			Length:     idx[1] - idx[0],
		})
	}
	return citations
}
