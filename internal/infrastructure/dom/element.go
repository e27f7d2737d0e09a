package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cookielens/backend/internal/domain"
)

// Element is a read-only view of one DOM node paired with the computed style
// and geometry captured by the extension. Index is the element's position in
// the document-order walk and doubles as its scan-scoped identity.
type Element struct {
	Index int
	Tag   string
	Style domain.ComputedStyle
	Rect  domain.Rect

	sel *goquery.Selection
}

// Selection exposes the underlying goquery selection for sub-queries
// (buttons, anchors, ancestors).
func (e *Element) Selection() *goquery.Selection {
	return e.sel
}

// Text returns the trimmed text content of the element.
func (e *Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// HTML returns the inner HTML of the element, empty on parse oddities.
func (e *Element) HTML() string {
	h, err := e.sel.Html()
	if err != nil {
		return ""
	}
	return h
}

// Class returns the element's class attribute, empty when absent.
func (e *Element) Class() string {
	return e.sel.AttrOr("class", "")
}

// ID returns the element's id attribute, empty when absent.
func (e *Element) ID() string {
	return e.sel.AttrOr("id", "")
}

// Selector generates a short selector for the element: #id, first class, or
// the tag name.
func (e *Element) Selector() string {
	if id := e.ID(); id != "" {
		return "#" + id
	}
	for _, cls := range strings.Fields(e.Class()) {
		return "." + cls
	}
	return e.Tag
}

// Describe returns a compact human-readable element description for logs.
func (e *Element) Describe() string {
	desc := e.Tag
	if id := e.ID(); id != "" {
		desc += "#" + id
	}
	if classes := strings.Fields(e.Class()); len(classes) > 0 {
		desc += "." + classes[0]
	}
	return desc
}

// ParseZIndex converts a computed z-index value to an int. "auto", empty and
// malformed values all degrade to 0.
func ParseZIndex(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// ParseOpacity converts a computed opacity value to a float. Absent or
// malformed values degrade to fully opaque.
func ParseOpacity(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1.0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 1.0
	}
	return f
}
