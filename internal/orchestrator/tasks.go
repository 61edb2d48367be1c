package orchestrator

import "fmt"

// Task is one request for exactly one slide at a fixed deck index, bound
// to one backend. Tasks are immutable once built.
type Task struct {
	// Index is the 1-based slide position. Indices of a batch are
	// contiguous 1..N.
	Index int

	// Prompt is the synthesized generation instruction.
	Prompt string

	// Backend is the registry name of the assigned provider.
	Backend string

	// ThemeHint is the shared visual theme, used for image resolution.
	ThemeHint string
}

// BuildTasks produces the ordered task list for a deck of slideCount
// slides about topic. Backends are assigned round-robin over backendNames.
// This is a pure construction step with no side effects.
func BuildTasks(topic string, slideCount int, backendNames []string, themeHint string) ([]Task, error) {
	if slideCount < 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("slide count must be >= 1, got %d", slideCount)}
	}
	if len(backendNames) == 0 {
		return nil, &ConfigurationError{Reason: "no backends configured"}
	}

	tasks := make([]Task, 0, slideCount)
	for i := 1; i <= slideCount; i++ {
		tasks = append(tasks, Task{
			Index:     i,
			Prompt:    slidePrompt(topic, i, slideCount, themeHint),
			Backend:   backendNames[(i-1)%len(backendNames)],
			ThemeHint: themeHint,
		})
	}
	return tasks, nil
}

// slidePrompt instructs a backend to produce exactly one slide, identified
// by its position and the deck size.
func slidePrompt(topic string, pos, total int, theme string) string {
	prompt := fmt.Sprintf(
		"You are writing slide %d of a %d-slide deck about %q.\n"+
			"Produce exactly one slide as markdown: a \"##\" heading line "+
			"with a short title, then a single-sentence body.\n"+
			"Do not produce any other slide.",
		pos, total, topic)
	if theme != "" {
		prompt += fmt.Sprintf("\nKeep the visual theme %q in mind when choosing wording.", theme)
	}
	return prompt
}
