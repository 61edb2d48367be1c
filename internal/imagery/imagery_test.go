package imagery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderRef_DeterministicForEqualText(t *testing.T) {
	a := PlaceholderRef("launch plan slide")
	b := PlaceholderRef("launch plan slide")
	c := PlaceholderRef("different text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "https://"))
}

func TestResolver_NoSourcesFallsBackToPlaceholder(t *testing.T) {
	r := NewResolver(nil)
	ref := r.ImageRef(context.Background(), "some slide text", "")
	assert.Equal(t, PlaceholderRef("some slide text"), ref)
}

func TestResolver_ThemeTakesPrecedenceAsQuery(t *testing.T) {
	var gotQuery string
	src := SourceFunc(func(_ context.Context, query string) (string, error) {
		gotQuery = query
		return "https://img.example/1.jpg", nil
	})

	r := NewResolver(nil, src)
	ref := r.ImageRef(context.Background(), "cloud data platform", "retro sunset")

	assert.Equal(t, "https://img.example/1.jpg", ref)
	assert.Equal(t, "retro sunset", gotQuery)
}

func TestResolver_ChainFallsThroughOnFailure(t *testing.T) {
	failing := SourceFunc(func(context.Context, string) (string, error) {
		return "", errors.New("backend down")
	})
	working := SourceFunc(func(context.Context, string) (string, error) {
		return "https://img.example/2.jpg", nil
	})

	r := NewResolver(nil, failing, working)
	ref := r.ImageRef(context.Background(), "cloud data platform", "")
	assert.Equal(t, "https://img.example/2.jpg", ref)
}

func TestResolver_AllSourcesFailingNeverErrors(t *testing.T) {
	failing := SourceFunc(func(context.Context, string) (string, error) {
		return "", errors.New("backend down")
	})

	r := NewResolver(nil, failing, failing)
	ref := r.ImageRef(context.Background(), "cloud data platform", "theme")
	assert.Equal(t, PlaceholderRef("cloud data platform"), ref)
}

func TestKeywords_RankedByFrequencyThenPosition(t *testing.T) {
	got := Keywords("cloud platform cloud metrics platform cloud", 2)
	require.Equal(t, []string{"cloud", "platform"}, got)
}

func TestKeywords_SkipsStopwordsAndShortWords(t *testing.T) {
	got := Keywords("the api of an ML v2 pipeline", 5)
	assert.Equal(t, []string{"api", "pipeline"}, got)
}

func TestKeywords_StripsPunctuation(t *testing.T) {
	got := Keywords("Growth! Velocity, (throughput).", 3)
	assert.Equal(t, []string{"growth", "velocity", "throughput"}, got)
}

func TestKeywords_ZeroMaxReturnsNil(t *testing.T) {
	assert.Nil(t, Keywords("anything at all", 0))
}
