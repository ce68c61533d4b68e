package source

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dharsanguruparan/BillIndex/internal/model"
	pdfutil "github.com/dharsanguruparan/BillIndex/internal/pdf"
)

// ErrNoTextContainer is returned when an HTML version has no <pre> body.
var ErrNoTextContainer = errors.New("no text container")

// ReadText returns the raw body text of a version file.
func ReadText(f model.VersionFile) (string, error) {
	switch f.Format {
	case FormatPDF:
		return pdfutil.ExtractFile(f.Path)
	case FormatHTML:
		file, err := os.Open(f.Path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Path, err)
		}
		defer file.Close()
		doc, err := html.Parse(file)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", f.Path, err)
		}
		pre := findPre(doc)
		if pre == nil {
			return "", fmt.Errorf("%s: %w", f.Path, ErrNoTextContainer)
		}
		var b strings.Builder
		collectText(pre, &b)
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported format %q for %s", f.Format, f.Path)
	}
}

func findPre(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findPre(c); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
