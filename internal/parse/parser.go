// Package parse turns a growing stream of generated text into slides. A
// Parser is owned by exactly one generation task: it accumulates fragments,
// re-scans the whole buffer on every call, and yields the best currently
// recognizable slide for its task. Partial buffers are always valid input;
// an arbitrarily truncated prefix yields either a slide or nothing, never
// an error.
package parse

import (
	"context"
	"strings"

	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"go.uber.org/zap"
)

// candidate is one structural unit recognized in the buffer, before
// enrichment. Ordinal is its 1-based position among all recognized units.
type candidate struct {
	title   string
	body    string
	ordinal int
}

// Parser holds the private parse state for one task. Not safe for
// concurrent use; each task owns exactly one Parser.
type Parser struct {
	index    int
	theme    string
	resolver *imagery.Resolver
	logger   *zap.Logger

	buffer      strings.Builder
	seenTitles  map[string]bool
	lastEmitted *deck.Slide
	degraded    bool
}

// New creates a Parser for the task at the given deck index. theme carries
// the shared theme hint used for image resolution; resolver must be
// non-nil. logger may be nil.
func New(index int, theme string, resolver *imagery.Resolver, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		index:      index,
		theme:      theme,
		resolver:   resolver,
		logger:     logger,
		seenTitles: make(map[string]bool),
	}
}

// Reset discards all accumulated state, returning the Parser to its
// just-constructed condition.
func (p *Parser) Reset() {
	p.buffer.Reset()
	p.seenTitles = make(map[string]bool)
	p.lastEmitted = nil
	p.degraded = false
}

// Append adds fragment to the buffer and returns the current best slide,
// or nil when no unit is recognizable yet. Because the whole buffer is
// re-scanned on every call, Append is idempotent under replay: appending
// an empty fragment, or re-feeding the same cumulative buffer to a fresh
// parser, returns the same slide.
func (p *Parser) Append(ctx context.Context, fragment string) *deck.Slide {
	p.buffer.WriteString(fragment)
	text := p.buffer.String()

	cands := scanDelimited(text)
	if len(cands) == 0 {
		cands = scanFallback(text)
		if len(cands) > 0 && !p.degraded {
			p.degraded = true
			p.logger.Debug("no heading markers found, using fallback segmentation",
				zap.Int("index", p.index))
		}
	}
	if len(cands) == 0 {
		return p.lastEmitted
	}

	cand := p.choose(cands)
	if cand == nil {
		return p.lastEmitted
	}

	slide := p.enrich(ctx, *cand)
	if p.lastEmitted != nil && *p.lastEmitted == *slide {
		return p.lastEmitted
	}
	p.seenTitles[cand.title] = true
	p.lastEmitted = slide
	return slide
}

// Degraded reports whether fallback segmentation was ever used.
func (p *Parser) Degraded() bool {
	return p.degraded
}

// choose selects the candidate this task should emit. A well-behaved
// backend returns exactly one unit, but backends routinely echo a whole
// deck; in that case the candidate at the task's own position is the right
// one. Titles already emitted earlier in this stream stay claimed by their
// earlier ordinal and are not re-selected for a different position.
func (p *Parser) choose(cands []candidate) *candidate {
	pos := p.index
	if pos > len(cands) {
		pos = len(cands)
	}
	if pos < 1 {
		pos = 1
	}
	cand := cands[pos-1]

	// Refreshing the previously emitted unit with a more complete body is
	// fine; switching back to a different already-seen title is not.
	if p.seenTitles[cand.title] && p.lastEmitted != nil && p.lastEmitted.Title != truncateTitle(cand.title) {
		return nil
	}
	return &cand
}

// enrich builds the final slide from a candidate: title cap, one-sentence
// body, palette classification, and image resolution. Image failures are
// absorbed inside the resolver and can never fail the slide.
func (p *Parser) enrich(ctx context.Context, c candidate) *deck.Slide {
	title := truncateTitle(c.title)
	body := firstSentence(c.body)
	return &deck.Slide{
		Index:    p.index,
		Title:    title,
		Body:     body,
		ImageRef: p.resolver.ImageRef(ctx, title+" "+body, p.theme),
		Palette:  deck.PaletteFor(title + " " + body),
	}
}

// --- delimited mode -------------------------------------------------------

// scanDelimited walks the buffer line by line. A "#" or "##" heading opens
// a candidate; the next heading, a bare "---" separator line, or the end of
// the buffer closes it. Lines outside any open candidate are ignored.
func scanDelimited(text string) []candidate {
	var (
		out     []candidate
		open    bool
		title   string
		body    []string
		ordinal int
	)

	closeCurrent := func() {
		if !open {
			return
		}
		open = false
		t := strings.TrimSpace(title)
		if t == "" {
			return
		}
		ordinal++
		out = append(out, candidate{
			title:   t,
			body:    strings.TrimSpace(strings.Join(body, "\n")),
			ordinal: ordinal,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			closeCurrent()
			open = true
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			body = nil
		case trimmed == deck.Separator:
			closeCurrent()
		default:
			if open {
				body = append(body, line)
			}
		}
	}
	closeCurrent()
	return out
}

// --- fallback mode --------------------------------------------------------

// minSegmentLen is the trimmed length below which a fallback segment is
// considered noise.
const minSegmentLen = 5

// scanFallback segments the buffer when no heading markers exist: first on
// blank-line paragraphs, then on sentence boundaries when the buffer is a
// single paragraph. Each non-trivial segment becomes a candidate whose
// title is its first sentence (or first line) and whose body is the rest.
func scanFallback(text string) []candidate {
	var segments []string
	switch paras := splitParagraphs(text); {
	case len(paras) >= 2:
		segments = paras
	case sentenceEnd(text) >= 0:
		// A single paragraph qualifies only once it holds at least one
		// complete sentence; a shorter prefix is too raw to segment.
		segments = splitSentences(text)
	default:
		return nil
	}

	var out []candidate
	ordinal := 0
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if len(seg) <= minSegmentLen {
			continue
		}
		title, rest := headOf(seg)
		ordinal++
		out = append(out, candidate{title: title, body: rest, ordinal: ordinal})
	}
	return out
}

// splitParagraphs splits on blank lines, dropping empty segments.
func splitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) != "" {
			out = append(out, para)
		}
	}
	return out
}

// splitSentences splits on sentence-terminal punctuation followed by
// whitespace.
func splitSentences(text string) []string {
	var out []string
	rest := text
	for {
		end := sentenceEnd(rest)
		if end < 0 {
			if strings.TrimSpace(rest) != "" {
				out = append(out, rest)
			}
			return out
		}
		out = append(out, rest[:end])
		rest = rest[end:]
	}
}

// sentenceTerminals are the runes that may end a sentence.
const sentenceTerminals = ".!?。！？"

// sentenceEnd returns the byte offset one past the first sentence-terminal
// rune that is followed by whitespace or the end of text, or -1 when text
// holds no complete sentence.
func sentenceEnd(text string) int {
	for i, r := range text {
		if !strings.ContainsRune(sentenceTerminals, r) {
			continue
		}
		next := i + len(string(r))
		if next >= len(text) {
			return next
		}
		if rest := text[next:]; rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t' || rest[0] == '\r' {
			return next
		}
	}
	return -1
}

// headOf splits a segment into its title (first sentence, or first line
// when no sentence boundary exists) and the remaining text.
func headOf(seg string) (title, rest string) {
	if end := sentenceEnd(seg); end >= 0 {
		return strings.TrimSpace(seg[:end]), strings.TrimSpace(seg[end:])
	}
	if nl := strings.IndexByte(seg, '\n'); nl >= 0 {
		return strings.TrimSpace(seg[:nl]), strings.TrimSpace(seg[nl:])
	}
	return strings.TrimSpace(seg), ""
}

// firstSentence truncates body to its first sentence. Slide bodies are
// kept to exactly one sentence to stay terse on a rendered slide.
func firstSentence(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if end := sentenceEnd(body); end >= 0 {
		return strings.TrimSpace(body[:end])
	}
	return body
}

// truncateTitle caps a title at deck.MaxTitleLen runes.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= deck.MaxTitleLen {
		return title
	}
	return string(runes[:deck.MaxTitleLen])
}
