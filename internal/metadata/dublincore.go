package metadata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DublinCoreNS is the namespace of the embedded date element.
const DublinCoreNS = "http://purl.org/dc/elements/1.1/"

// ParseDublinCore returns the text of the first dc:date element.
func ParseDublinCore(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Bill XML declares entities and DTDs that are irrelevant here.
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("decode dublin core: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Space != DublinCoreNS || start.Name.Local != "date" {
			continue
		}
		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return "", fmt.Errorf("decode dc:date: %w", err)
		}
		return strings.TrimSpace(value), nil
	}
}

// SecondaryStrategy resolves from the Dublin Core block of the version's
// XML text. It never supplies URLs.
type SecondaryStrategy struct{}

func (SecondaryStrategy) Name() string { return "dublin_core" }

func (SecondaryStrategy) Resolve(src Sources) (Result, bool) {
	if src.Secondary == nil {
		return Result{}, false
	}
	raw, err := ParseDublinCore(src.Secondary)
	if err != nil {
		return Result{}, false
	}
	issued, ok := ParseIssued(raw)
	if !ok {
		return Result{}, false
	}
	return Result{IssuedOn: issued}, true
}
