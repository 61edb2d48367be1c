package deck

import "strings"

// Tone is the dominant keyword category detected in slide text.
type Tone string

const (
	ToneCreative Tone = "creative"
	ToneTech     Tone = "tech"
	ToneBusiness Tone = "business"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// Keyword vocabularies used for tone classification. Matching is
// case-insensitive substring-free: the text is split on non-letter
// boundaries and compared word by word.
var toneVocabulary = map[Tone][]string{
	TonePositive: {
		"growth", "success", "win", "improve", "gain", "benefit", "best",
		"great", "strong", "opportunity", "advantage", "progress", "achieve",
	},
	ToneNegative: {
		"risk", "loss", "fail", "failure", "decline", "problem", "threat",
		"crisis", "weak", "cost", "danger", "challenge", "deficit",
	},
	ToneTech: {
		"software", "data", "cloud", "api", "algorithm", "network", "ai",
		"model", "platform", "digital", "code", "system", "automation",
		"compute", "infrastructure",
	},
	ToneBusiness: {
		"market", "revenue", "customer", "strategy", "sales", "brand",
		"product", "investment", "profit", "enterprise", "stakeholder",
		"roadmap", "quarter",
	},
	ToneCreative: {
		"design", "art", "story", "color", "imagine", "creative", "vision",
		"inspire", "craft", "style", "aesthetic", "narrative", "music",
	},
}

// Palettes per tone. Six roles, fixed hex values, one row per tone so that
// classification alone determines the palette.
var tonePalettes = map[Tone]ColorPalette{
	ToneCreative: {Background: "#1a1423", Surface: "#2e2348", Primary: "#b287e8", Secondary: "#e86fb4", Accent: "#ffd166", Text: "#f5f0ff"},
	ToneTech:     {Background: "#0b1b2b", Surface: "#15293e", Primary: "#38bdf8", Secondary: "#818cf8", Accent: "#34d399", Text: "#e6f1ff"},
	ToneBusiness: {Background: "#101418", Surface: "#1c2530", Primary: "#3b82f6", Secondary: "#64748b", Accent: "#f59e0b", Text: "#f1f5f9"},
	TonePositive: {Background: "#0c1f17", Surface: "#163527", Primary: "#4ade80", Secondary: "#22d3ee", Accent: "#facc15", Text: "#ecfdf5"},
	ToneNegative: {Background: "#1f1113", Surface: "#331b1f", Primary: "#f87171", Secondary: "#fb923c", Accent: "#e5e7eb", Text: "#fef2f2"},
	ToneNeutral:  {Background: "#18181b", Surface: "#27272a", Primary: "#a1a1aa", Secondary: "#71717a", Accent: "#d4d4d8", Text: "#fafafa"},
}

// ClassifyTone picks the dominant tone for the given text by counting
// vocabulary hits per category. Ties break by priority: creative over tech
// over business over sentiment; sentiment only wins when it strictly beats
// every other category. Text with no hits is neutral.
func ClassifyTone(text string) Tone {
	counts := make(map[Tone]int, len(toneVocabulary))
	for _, word := range splitWords(text) {
		for tone, vocab := range toneVocabulary {
			for _, kw := range vocab {
				if word == kw {
					counts[tone]++
				}
			}
		}
	}

	sentiment := TonePositive
	if counts[ToneNegative] > counts[TonePositive] {
		sentiment = ToneNegative
	}
	sentimentCount := counts[TonePositive] + counts[ToneNegative]

	best := ToneNeutral
	bestCount := 0
	// Priority order: a later entry must strictly exceed the current best.
	for _, cand := range []struct {
		tone  Tone
		count int
	}{
		{ToneCreative, counts[ToneCreative]},
		{ToneTech, counts[ToneTech]},
		{ToneBusiness, counts[ToneBusiness]},
		{sentiment, sentimentCount},
	} {
		if cand.count > bestCount {
			best = cand.tone
			bestCount = cand.count
		}
	}
	return best
}

// PaletteFor returns the fixed palette for the tone classified from text.
func PaletteFor(text string) ColorPalette {
	return tonePalettes[ClassifyTone(text)]
}

// splitWords lowercases text and splits it on any non-letter, non-digit rune.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}
