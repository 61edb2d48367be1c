package deck

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Separator is the line that delimits slides in the markdown interchange
// form. Renderers treat a line containing only this token as a slide break.
const Separator = "---"

// Markdown flattens slides into the canonical interchange form: each slide
// is its title rendered as a heading line followed by the body, slides
// joined by a line containing only the separator token. Ordering is exactly
// the order of the input snapshot.
func Markdown(slides []Slide) string {
	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s\n", s.Title, s.Body))
	}
	return strings.Join(parts, "\n"+Separator+"\n\n")
}

// Export is the top-level JSON export structure for a finished deck.
type Export struct {
	Topic      string  `json:"topic"`
	ExportedAt string  `json:"exportedAt"`
	Requested  int     `json:"requested"`
	Slides     []Slide `json:"slides"`
}

// ExportJSON serializes a snapshot with its request metadata.
func ExportJSON(topic string, requested int, slides []Slide) ([]byte, error) {
	export := Export{
		Topic:      topic,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Requested:  requested,
		Slides:     slides,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export deck: %w", err)
	}
	return data, nil
}
