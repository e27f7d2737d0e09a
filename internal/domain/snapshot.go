package domain

import "time"

// PageSnapshot is the wire model the browser extension posts for detection.
// The extension serializes the rendered DOM plus the computed style and
// bounding rect of every element, in document order. Nodes[i] belongs to the
// i-th element of a depth-first walk of the parsed HTML; a short or missing
// Nodes slice degrades to zero metrics for the unmatched elements.
type PageSnapshot struct {
	URL        string        `json:"url" binding:"required"`
	Domain     string        `json:"domain,omitempty"`
	HTML       string        `json:"html" binding:"required"`
	Viewport   Viewport      `json:"viewport"`
	Nodes      []NodeMetrics `json:"nodes,omitempty"`
	CapturedAt time.Time     `json:"capturedAt,omitempty"`
}

// Viewport holds the window dimensions at capture time.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the viewport area in square pixels.
func (v Viewport) Area() float64 {
	return v.Width * v.Height
}

// NodeMetrics pairs one element with its rendered style and geometry.
type NodeMetrics struct {
	Style ComputedStyle `json:"style"`
	Rect  Rect          `json:"rect"`
}

// ComputedStyle carries the computed style attributes the detector consumes.
// All fields are the raw string values from getComputedStyle; absent values
// are empty strings.
type ComputedStyle struct {
	Position        string `json:"position,omitempty"`
	ZIndex          string `json:"zIndex,omitempty"`
	Display         string `json:"display,omitempty"`
	Visibility      string `json:"visibility,omitempty"`
	Opacity         string `json:"opacity,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the bottom edge of the rect.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Area returns the rect area in square pixels.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}
