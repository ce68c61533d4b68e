package metadata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Formats recognized in MODS url labels, in match order.
var Formats = []string{"html", "xml", "pdf"}

type modsDocument struct {
	DateIssued []string  `xml:"originInfo>dateIssued"`
	URLs       []modsURL `xml:"location>url"`
}

type modsURL struct {
	Label string `xml:"displayLabel,attr"`
	Value string `xml:",chardata"`
}

// MODS is the parsed subset of a GPO MODS file.
type MODS struct {
	DateIssued string
	URLs       map[string]string
}

// ParseMODS reads the issue date and rendition URLs from a MODS document.
// A url element is assigned to the first format named in its label; a later
// element for the same format replaces an earlier one.
func ParseMODS(data []byte) (*MODS, error) {
	var doc modsDocument
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode mods: %w", err)
	}
	out := &MODS{URLs: map[string]string{}}
	for _, d := range doc.DateIssued {
		if d = strings.TrimSpace(d); d != "" {
			out.DateIssued = d
			break
		}
	}
	for _, u := range doc.URLs {
		label := strings.ToLower(u.Label)
		for _, format := range Formats {
			if strings.Contains(label, format) {
				out.URLs[format] = strings.TrimSpace(u.Value)
				break
			}
		}
	}
	return out, nil
}

// PrimaryStrategy resolves from the MODS file published next to the text.
type PrimaryStrategy struct{}

func (PrimaryStrategy) Name() string { return "mods" }

func (PrimaryStrategy) Resolve(src Sources) (Result, bool) {
	if src.Primary == nil {
		return Result{}, false
	}
	mods, err := ParseMODS(src.Primary)
	if err != nil {
		return Result{}, false
	}
	issued, ok := ParseIssued(mods.DateIssued)
	if !ok {
		return Result{}, false
	}
	return Result{IssuedOn: issued, URLs: mods.URLs}, true
}
