// Package model contains the struct definitions shared by the indexing
// pipeline, the document store and the search index.
package model

import (
	"time"
)

// Sponsor is the member of Congress who introduced a bill.
type Sponsor struct {
	BioguideID string `json:"bioguide_id,omitempty"`
	Name       string `json:"name"`
	State      string `json:"state,omitempty"`
	Party      string `json:"party,omitempty"`
}

// Action is a single entry in a bill's legislative history.
type Action struct {
	Type    string    `json:"type,omitempty"`
	Text    string    `json:"text"`
	ActedAt time.Time `json:"acted_at"`
}

// BillSummary is the curated subset of bill fields copied onto every version
// record so search results do not need a second lookup.
type BillSummary struct {
	BillID     string   `json:"bill_id"`
	BillType   string   `json:"bill_type"`
	Number     int      `json:"number"`
	Session    int      `json:"session"`
	Sponsor    *Sponsor `json:"sponsor,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	LastAction *Action  `json:"last_action,omitempty"`
}

// Bill is one legislative document. Identity fields never change once the
// bill exists; the pipeline only touches the rollup fields and Indexed.
type Bill struct {
	BillID      string   `json:"bill_id"`
	BillType    string   `json:"bill_type"`
	Number      int      `json:"number"`
	Session     int      `json:"session"`
	Abbreviated bool     `json:"abbreviated"`
	Indexed     bool     `json:"indexed"`
	Sponsor     *Sponsor `json:"sponsor,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	LastAction  *Action  `json:"last_action,omitempty"`

	VersionCodes  []string         `json:"version_codes,omitempty"`
	VersionsCount int              `json:"versions_count"`
	LastVersion   *VersionSummary  `json:"last_version,omitempty"`
	LastVersionOn Date             `json:"last_version_on"`
	CitationIDs   []string         `json:"citation_ids,omitempty"`
	Citations     []Citation       `json:"citations,omitempty"`
	VersionInfo   []VersionSummary `json:"version_info,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Curated returns the denormalized copy stored on version records.
func (b *Bill) Curated() BillSummary {
	return BillSummary{
		BillID:     b.BillID,
		BillType:   b.BillType,
		Number:     b.Number,
		Session:    b.Session,
		Sponsor:    b.Sponsor,
		Summary:    b.Summary,
		Keywords:   append([]string(nil), b.Keywords...),
		LastAction: b.LastAction,
	}
}

// ApplyRollup copies the derived fields onto the bill and marks it indexed.
func (b *Bill) ApplyRollup(r Rollup, now time.Time) {
	last := r.LastVersion
	b.VersionCodes = append([]string(nil), r.VersionCodes...)
	b.VersionsCount = r.VersionsCount
	b.LastVersion = &last
	b.LastVersionOn = r.LastVersionOn
	b.CitationIDs = append([]string(nil), r.CitationIDs...)
	b.Citations = append([]Citation(nil), r.Citations...)
	b.VersionInfo = append([]VersionSummary(nil), r.VersionInfo...)
	b.Indexed = true
	b.UpdatedAt = now
}
