// Package source locates the version files of a bill on disk and reads their
// text and metadata. Paths follow the GPO bulk data layout:
//
//	<root>/gpo/BILLS/<session>/<type>/<type><number>-<session>-<code>.htm
//	<root>/gpo/BILLS/<session>/<type>/<type><number>-<session>-<code>.mods.xml
//	<root>/congress/<session>/bills/<type>/<type><number>/text-versions/<code>/document.xml
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dharsanguruparan/BillIndex/internal/metadata"
	"github.com/dharsanguruparan/BillIndex/internal/model"
)

const (
	FormatHTML = "htm"
	FormatPDF  = "pdf"

	modsSuffix = ".mods.xml"
)

var codePattern = regexp.MustCompile(`^[a-z_]+$`)

// Layout resolves paths under one data directory.
type Layout struct {
	Root string
}

// TextDir is the directory holding a bill type's version files.
func (l Layout) TextDir(session int, billType string) string {
	return filepath.Join(l.Root, "gpo", "BILLS", strconv.Itoa(session), billType)
}

// TextPath is where a version's text lives for the given format.
func (l Layout) TextPath(ref model.BillRef, code, format string) string {
	return filepath.Join(l.TextDir(ref.Session, ref.Type), fmt.Sprintf("%s-%s.%s", ref.ID(), code, format))
}

// ModsPath is the primary metadata file for a version.
func (l Layout) ModsPath(ref model.BillRef, code string) string {
	return filepath.Join(l.TextDir(ref.Session, ref.Type), ref.ID()+"-"+code+modsSuffix)
}

// DocumentPath is the version's XML text, which embeds Dublin Core metadata.
func (l Layout) DocumentPath(ref model.BillRef, code string) string {
	return filepath.Join(l.Root, "congress", strconv.Itoa(ref.Session), "bills", ref.Type,
		fmt.Sprintf("%s%d", ref.Type, ref.Number), "text-versions", code, "document.xml")
}

// Discover lists one file per version code for a bill, sorted by code. HTML
// text is preferred; a PDF is used only when no HTML exists for that code.
func (l Layout) Discover(ref model.BillRef) ([]model.VersionFile, error) {
	byCode := make(map[string]model.VersionFile)
	for _, format := range []string{FormatHTML, FormatPDF} {
		pattern := filepath.Join(l.TextDir(ref.Session, ref.Type), ref.ID()+"-*."+format)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, path := range matches {
			code := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), ref.ID()+"-"), "."+format)
			if !codePattern.MatchString(code) {
				continue
			}
			if _, ok := byCode[code]; ok {
				continue
			}
			byCode[code] = model.VersionFile{BillID: ref.ID(), Code: code, Path: path, Format: format}
		}
	}
	files := make([]model.VersionFile, 0, len(byCode))
	for _, f := range byCode {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Code < files[j].Code })
	return files, nil
}

// ReadSources loads the two metadata documents for a version. Missing files
// come back as nil slices.
func (l Layout) ReadSources(ref model.BillRef, code string) (metadata.Sources, error) {
	primary, err := readOptional(l.ModsPath(ref, code))
	if err != nil {
		return metadata.Sources{}, err
	}
	secondary, err := readOptional(l.DocumentPath(ref, code))
	if err != nil {
		return metadata.Sources{}, err
	}
	return metadata.Sources{
		VersionID: model.VersionID(ref.ID(), code),
		Primary:   primary,
		Secondary: secondary,
	}, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
