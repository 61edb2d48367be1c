package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTone_NoHitsIsNeutral(t *testing.T) {
	assert.Equal(t, ToneNeutral, ClassifyTone("the quick brown fox jumps over lazy dogs"))
	assert.Equal(t, ToneNeutral, ClassifyTone(""))
}

func TestClassifyTone_DominantCategoryWins(t *testing.T) {
	assert.Equal(t, ToneTech, ClassifyTone("Cloud data platform with API automation"))
	assert.Equal(t, ToneBusiness, ClassifyTone("Revenue strategy for the next quarter"))
	assert.Equal(t, ToneCreative, ClassifyTone("Design a story with color and vision"))
}

func TestClassifyTone_TieBreaksByPriority(t *testing.T) {
	// One creative hit and one tech hit: creative outranks tech on a tie.
	assert.Equal(t, ToneCreative, ClassifyTone("design the network"))

	// One tech hit and one business hit: tech outranks business.
	assert.Equal(t, ToneTech, ClassifyTone("market data"))
}

func TestClassifyTone_SentimentMustStrictlyExceed(t *testing.T) {
	// One tech hit, one positive hit: tech keeps the tie.
	assert.Equal(t, ToneTech, ClassifyTone("software growth"))

	// Two sentiment hits against one tech hit: sentiment wins.
	assert.Equal(t, TonePositive, ClassifyTone("software growth success"))
}

func TestClassifyTone_NegativeOutweighsPositive(t *testing.T) {
	assert.Equal(t, ToneNegative, ClassifyTone("risk of loss and one win"))
}

func TestClassifyTone_MatchesWholeWordsOnly(t *testing.T) {
	// "winter" must not count as "win".
	assert.Equal(t, ToneNeutral, ClassifyTone("winter is coming"))
}

func TestPaletteFor_IsDeterministic(t *testing.T) {
	text := "Cloud infrastructure and data platforms"
	first := PaletteFor(text)
	second := PaletteFor(text)
	assert.Equal(t, first, second)
}

func TestPaletteFor_AllRolesPopulated(t *testing.T) {
	for tone, palette := range tonePalettes {
		assert.NotEmpty(t, palette.Background, "tone %s", tone)
		assert.NotEmpty(t, palette.Surface, "tone %s", tone)
		assert.NotEmpty(t, palette.Primary, "tone %s", tone)
		assert.NotEmpty(t, palette.Secondary, "tone %s", tone)
		assert.NotEmpty(t, palette.Accent, "tone %s", tone)
		assert.NotEmpty(t, palette.Text, "tone %s", tone)
	}
}
