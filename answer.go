package rubric

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Answer is the tagged union the spec calls for in place of the source's
// interchangeable scalar / {answer, reasoning} dict shapes (spec.md §9,
// "Dynamic answer dict shape"). Every call site reads the scalar value
// through Value(); serialization always normalizes to the dict shape.
type Answer struct {
	value        float64
	reasoning    string
	hasReasoning bool
}

// NewScalarAnswer builds an Answer with no accompanying reasoning.
func NewScalarAnswer(value float64) Answer {
	return Answer{value: value}
}

// NewAnswerWithReasoning builds an Answer carrying the judge's (or a
// reference key author's) explanation for the value.
func NewAnswerWithReasoning(value float64, reasoning string) Answer {
	return Answer{value: value, reasoning: reasoning, hasReasoning: true}
}

// Value is the single accessor every call site uses to read the scalar
// answer, regardless of whether reasoning was attached.
func (a Answer) Value() float64 {
	return a.value
}

// Reasoning returns the attached explanation, if any.
func (a Answer) Reasoning() (string, bool) {
	return a.reasoning, a.hasReasoning
}

type answerDict struct {
	Answer    float64 `json:"answer" yaml:"answer"`
	Reasoning string  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// MarshalJSON normalizes to the dict shape ({"answer": ..., "reasoning": ...}).
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(answerDict{Answer: a.value, Reasoning: a.reasoning})
}

// UnmarshalJSON accepts both a bare scalar and the {"answer", "reasoning"} dict shape.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*a = NewScalarAnswer(scalar)
		return nil
	}

	var dict answerDict
	if err := json.Unmarshal(data, &dict); err != nil {
		return fmt.Errorf("answer must be a scalar or {answer, reasoning} object: %w", err)
	}
	*a = NewAnswerWithReasoning(dict.Answer, dict.Reasoning)
	return nil
}

// MarshalYAML normalizes to the dict shape.
func (a Answer) MarshalYAML() (interface{}, error) {
	return answerDict{Answer: a.value, Reasoning: a.reasoning}, nil
}

// UnmarshalYAML accepts both a bare scalar and the {answer, reasoning} mapping shape.
func (a *Answer) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var scalar float64
		if err := value.Decode(&scalar); err != nil {
			return fmt.Errorf("answer scalar: %w", err)
		}
		*a = NewScalarAnswer(scalar)
		return nil
	}

	var dict answerDict
	if err := value.Decode(&dict); err != nil {
		return fmt.Errorf("answer must be a scalar or {answer, reasoning} mapping: %w", err)
	}
	*a = NewAnswerWithReasoning(dict.Answer, dict.Reasoning)
	return nil
}
