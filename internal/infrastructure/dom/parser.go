package dom

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cookielens/backend/internal/domain"
)

// Page is a parsed snapshot: every element of the document in document
// order, each carrying whatever metrics the capture provided.
type Page struct {
	URL      string
	Domain   string
	Viewport domain.Viewport
	Elements []*Element

	doc *goquery.Document
}

// Document exposes the parsed goquery document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Parse converts a wire snapshot into a Page. Nodes[i] is paired with the
// i-th element of the document-order walk, matching how the extension
// serializes querySelectorAll('*'). Elements beyond the metrics slice keep
// zero metrics and degrade to "not visible" downstream.
func Parse(snap *domain.PageSnapshot) (*Page, error) {
	if snap == nil || strings.TrimSpace(snap.HTML) == "" {
		return nil, domain.ErrInvalidSnapshot
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}

	page := &Page{
		URL:      snap.URL,
		Domain:   snap.Domain,
		Viewport: snap.Viewport,
		doc:      doc,
	}
	if page.Domain == "" {
		page.Domain = hostnameOf(snap.URL)
	}

	doc.Find("*").Each(func(i int, sel *goquery.Selection) {
		el := &Element{
			Index: i,
			Tag:   goquery.NodeName(sel),
			sel:   sel,
		}
		if i < len(snap.Nodes) {
			el.Style = snap.Nodes[i].Style
			el.Rect = snap.Nodes[i].Rect
		}
		page.Elements = append(page.Elements, el)
	})

	return page, nil
}

// hostnameOf extracts the hostname from a URL, empty on malformed input.
func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
