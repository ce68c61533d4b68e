package model

import (
	"time"
)

// Citation is one cross-reference found in version text. Index and Length
// locate the match in the normalized text and differ between repeated
// citations of the same provision, so equality is decided by CitationID.
type Citation struct {
	CitationID string `json:"citation_id"`
	Type       string `json:"type"`
	Text       string `json:"match"`
	Title      string `json:"title,omitempty"`
	Section    string `json:"section,omitempty"`
	Index      int    `json:"index"`
	Length     int    `json:"length"`
}

// VersionFile is a version text file located on disk for one run.
type VersionFile struct {
	BillID string
	Code   string
	Path   string
	// Format is the extension the text was found under ("htm" or "pdf").
	Format string
}

// VersionID returns the bill_version_id for the file.
func (f VersionFile) VersionID() string {
	return VersionID(f.BillID, f.Code)
}

// VersionRecord is the per-version document written to both sinks.
type VersionRecord struct {
	BillVersionID string            `json:"bill_version_id"`
	BillID        string            `json:"bill_id"`
	Code          string            `json:"version_code"`
	Name          string            `json:"version_name"`
	IssuedOn      Date              `json:"issued_on"`
	URLs          map[string]string `json:"urls"`
	FullText      string            `json:"full_text"`
	Citations     []Citation        `json:"citations"`
	CitationIDs   []string          `json:"citation_ids"`
	Bill          BillSummary       `json:"bill"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Summary returns the compact form kept in a bill's version_info list.
func (v VersionRecord) Summary() VersionSummary {
	urls := make(map[string]string, len(v.URLs))
	for k, u := range v.URLs {
		urls[k] = u
	}
	return VersionSummary{
		BillVersionID: v.BillVersionID,
		Code:          v.Code,
		Name:          v.Name,
		IssuedOn:      v.IssuedOn,
		URLs:          urls,
	}
}

// VersionSummary describes a version without its text or citations.
type VersionSummary struct {
	BillVersionID string            `json:"bill_version_id"`
	Code          string            `json:"version_code"`
	Name          string            `json:"version_name"`
	IssuedOn      Date              `json:"issued_on"`
	URLs          map[string]string `json:"urls"`
}

// Rollup is the bill-level state derived from one run's built versions.
type Rollup struct {
	BillID        string
	VersionCodes  []string
	VersionsCount int
	LastVersion   VersionSummary
	LastVersionOn Date
	Citations     []Citation
	CitationIDs   []string
	VersionInfo   []VersionSummary
	// FullText is the latest version's text only.
	FullText string
}

// SearchDocument is the body indexed under the bill id in the bills
// collection.
type SearchDocument struct {
	Bill     BillSummary      `json:"bill"`
	Versions []VersionSummary `json:"version_info"`
	Codes    []string         `json:"version_codes"`
	Count    int              `json:"versions_count"`
	Last     VersionSummary   `json:"last_version"`
	LastOn   Date             `json:"last_version_on"`
	IDs      []string         `json:"citation_ids"`
	Cites    []Citation       `json:"citations"`
	FullText string           `json:"versions"`
	Indexed  time.Time        `json:"updated_at"`
}

// NewSearchDocument combines a bill's curated fields with its rollup.
func NewSearchDocument(b BillSummary, r Rollup, now time.Time) SearchDocument {
	return SearchDocument{
		Bill:     b,
		Versions: r.VersionInfo,
		Codes:    r.VersionCodes,
		Count:    r.VersionsCount,
		Last:     r.LastVersion,
		LastOn:   r.LastVersionOn,
		IDs:      r.CitationIDs,
		Cites:    r.Citations,
		FullText: r.FullText,
		Indexed:  now,
	}
}
