package rubric

// Scenario is an immutable evaluation input bundle (spec.md §3): the
// initial user-visible situation, the reference answer key, an optional
// single-shot completion for non-interactive scoring, and the
// conversation driver's revealed-information map.
type Scenario struct {
	Name        string
	Description string

	// Prompt is the initial user-visible situation.
	Prompt string

	// Completion is the single-shot model response scored against
	// Prompt in non-interactive modes. May be empty when the scenario
	// is only used by the conversation driver.
	Completion string

	// Answers maps a requirement name to its reference answer.
	Answers map[string]Answer

	// RevealedInfo maps a requirement name to {answer value (as its
	// Python-str(float)-style string form, e.g. "1.0") -> revealed
	// text}, consulted only by the conversation driver.
	RevealedInfo map[string]map[string]string
}

// Content concatenates prompt and completion the way the judge prompt's
// `response` slot expects (spec.md §4.3 step 3).
func (s Scenario) Content() string {
	return "prompt: " + s.Prompt + "\ncompletion: " + s.Completion
}

// flattenAnswers reduces Answers to a bare name->scalar map, the shape
// reference-guided frontier advancement and the conversation driver
// consume.
func (s Scenario) flattenAnswers() map[string]float64 {
	if len(s.Answers) == 0 {
		return nil
	}
	out := make(map[string]float64, len(s.Answers))
	for name, a := range s.Answers {
		out[name] = a.Value()
	}
	return out
}
