// Package imagery resolves illustration references for slide text. A
// Resolver walks an ordered chain of sources and, when every source fails,
// falls back to a deterministic checksum-seeded placeholder. Resolution
// never returns an error to callers: the parser must be able to enrich a
// slide unconditionally.
package imagery

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"

	"go.uber.org/zap"
)

// Source looks up an image reference for a search query. Implementations
// return an error to pass resolution on to the next source in the chain.
type Source interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, query string) (string, error)

// Resolve calls f.
func (f SourceFunc) Resolve(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// Resolver resolves image references through a source chain.
type Resolver struct {
	sources []Source
	logger  *zap.Logger
}

// NewResolver creates a Resolver that tries sources in order. logger may be
// nil, in which case source failures are not logged.
func NewResolver(logger *zap.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{sources: sources, logger: logger}
}

// ImageRef resolves a reference for the given slide text. When theme is
// non-empty it takes precedence as the search query; otherwise keywords
// extracted from the text are used. Failures fall through the source chain
// and finally to PlaceholderRef, so the result is never empty and no error
// is ever surfaced.
func (r *Resolver) ImageRef(ctx context.Context, text, theme string) string {
	query := theme
	if query == "" {
		query = strings.Join(Keywords(text, 3), " ")
	}
	if query != "" {
		for _, src := range r.sources {
			ref, err := src.Resolve(ctx, query)
			if err == nil && ref != "" {
				return ref
			}
			if err != nil {
				r.logger.Debug("image source failed, trying next",
					zap.String("query", query), zap.Error(err))
			}
		}
	}
	return PlaceholderRef(text)
}

// PlaceholderRef derives a stable placeholder reference from a checksum of
// the source text. Equal text always yields the same reference.
func PlaceholderRef(text string) string {
	sum := crc32.ChecksumIEEE([]byte(text))
	return fmt.Sprintf("https://picsum.photos/seed/%08x/1280/720", sum)
}

// stopwords excluded from keyword extraction.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "was": true, "be": true, "this": true, "that": true,
	"it": true, "as": true, "at": true, "by": true, "from": true, "its": true,
}

// Keywords extracts up to max distinct keywords from text, ranked by
// frequency with first occurrence breaking ties. Words shorter than three
// characters and stopwords are skipped.
func Keywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	type entry struct {
		word  string
		count int
		first int
	}

	counts := make(map[string]*entry)
	order := make([]*entry, 0)
	for pos, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,;:!?\"'()[]{}#*-")
		if len(word) < 3 || stopwords[word] {
			continue
		}
		if e, ok := counts[word]; ok {
			e.count++
			continue
		}
		e := &entry{word: word, count: 1, first: pos}
		counts[word] = e
		order = append(order, e)
	}

	// Selection sort over the small candidate list keeps ranking stable.
	out := make([]string, 0, max)
	for len(out) < max && len(order) > 0 {
		best := 0
		for i := 1; i < len(order); i++ {
			if order[i].count > order[best].count ||
				(order[i].count == order[best].count && order[i].first < order[best].first) {
				best = i
			}
		}
		out = append(out, order[best].word)
		order = append(order[:best], order[best+1:]...)
	}
	return out
}
