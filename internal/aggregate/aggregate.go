// Package aggregate derives a bill's rollup from the versions built in one
// run.
package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dharsanguruparan/BillIndex/internal/model"
)

// ErrNoVersions means no version of the bill could be built this run.
var ErrNoVersions = errors.New("no versions built")

// Sort orders versions by issue date, oldest first. Versions issued on the
// same day are ordered by version code so repeated runs agree regardless of
// filesystem enumeration order.
func Sort(versions []model.VersionRecord) {
	sort.SliceStable(versions, func(i, j int) bool {
		if c := versions[i].IssuedOn.Compare(versions[j].IssuedOn); c != 0 {
			return c < 0
		}
		return versions[i].Code < versions[j].Code
	})
}

// Rollup builds the bill-level view. Only the latest version's citations
// and text represent the bill.
func Rollup(billID string, versions []model.VersionRecord) (model.Rollup, error) {
	if len(versions) == 0 {
		return model.Rollup{}, fmt.Errorf("%s: %w", billID, ErrNoVersions)
	}
	sorted := append([]model.VersionRecord(nil), versions...)
	Sort(sorted)

	codes := make([]string, 0, len(sorted))
	info := make([]model.VersionSummary, 0, len(sorted))
	for _, v := range sorted {
		codes = append(codes, v.Code)
		info = append(info, v.Summary())
	}
	last := sorted[len(sorted)-1]

	return model.Rollup{
		BillID:        billID,
		VersionCodes:  codes,
		VersionsCount: len(sorted),
		LastVersion:   last.Summary(),
		LastVersionOn: last.IssuedOn,
		Citations:     append([]model.Citation{}, last.Citations...),
		CitationIDs:   append([]string{}, last.CitationIDs...),
		VersionInfo:   info,
		FullText:      last.FullText,
	}, nil
}
