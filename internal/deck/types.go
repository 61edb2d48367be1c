// Package deck holds the slide data model and the ordered deck store that
// aggregates slides produced by concurrent generation tasks.
package deck

// MaxTitleLen is the hard cap on slide titles. Longer candidates are
// truncated, never rejected.
const MaxTitleLen = 100

// Slide is one discrete structural item produced from generated text.
// It is a value type: a later Slide with the same Index supersedes any
// earlier one.
type Slide struct {
	// Index is the 1-based position of the slide within the deck.
	Index int `json:"index"`

	// Title is the heading text, at most MaxTitleLen characters.
	Title string `json:"title"`

	// Body is the slide content, constrained to a single sentence.
	Body string `json:"body"`

	// ImageRef is a resolved illustration reference. Never empty on a
	// slide returned by the parser; the resolver always falls back to a
	// deterministic placeholder.
	ImageRef string `json:"imageRef,omitempty"`

	// Palette holds the six color roles derived from Title and Body.
	Palette ColorPalette `json:"palette"`
}

// ColorPalette is a fixed record of six color roles. Palettes are derived
// deterministically from text content, so equal text yields equal palettes.
type ColorPalette struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
}
