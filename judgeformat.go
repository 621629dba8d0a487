package rubric

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	judgeResponseBaseStr      = "Respond with just a JSON object containing two fields: 'answer' and 'reasoning'."
	judgeResponseReasoningStr = "The 'reasoning' field should contain your explanation for the answer."
)

// FormatKind distinguishes the two judge response format variants
// (spec.md §3, "Judge Response Format"). The source expresses this as a
// class hierarchy (DiscreteJudgeResponseFormat / ContinuousJudgeResponseFormat);
// here it is a sum type switched on Kind, per spec.md §9.
type FormatKind int

const (
	FormatDiscrete FormatKind = iota
	FormatContinuous
)

// JudgeResponseFormat describes the judge's allowed verdicts: a finite
// set of discrete option values, or a closed continuous interval. It is
// value-typed and compared structurally — two formats with the same
// options and meanings are interchangeable.
type JudgeResponseFormat struct {
	Kind     FormatKind
	Options  []float64
	Meanings map[float64]string
}

// NewDiscreteFormat builds a discrete judge response format. meanings may
// be nil; any key present must be one of options.
func NewDiscreteFormat(options []float64, meanings map[float64]string) (JudgeResponseFormat, error) {
	if len(options) == 0 {
		return JudgeResponseFormat{}, fmt.Errorf("discrete judge response format requires at least one option")
	}
	f := JudgeResponseFormat{Kind: FormatDiscrete, Options: append([]float64(nil), options...), Meanings: meanings}
	for k := range meanings {
		if !f.Contains(k) {
			return JudgeResponseFormat{}, fmt.Errorf("meaning key %v is not among options %v", k, options)
		}
	}
	return f, nil
}

// NewContinuousFormat builds a continuous judge response format over the
// closed interval [lo, hi]. meanings, if provided, may only key the two
// endpoints.
func NewContinuousFormat(lo, hi float64, meanings map[float64]string) (JudgeResponseFormat, error) {
	if hi < lo {
		return JudgeResponseFormat{}, fmt.Errorf("continuous judge response format requires lo <= hi, got [%v, %v]", lo, hi)
	}
	for k := range meanings {
		if k != lo && k != hi {
			return JudgeResponseFormat{}, fmt.Errorf("continuous format meanings may only key the bounds %v/%v, got %v", lo, hi, k)
		}
	}
	return JudgeResponseFormat{Kind: FormatContinuous, Options: []float64{lo, hi}, Meanings: meanings}, nil
}

// BinaryFormat is the common-case discrete format: {1.0: yes, 0.0: no}.
func BinaryFormat() JudgeResponseFormat {
	f, _ := NewDiscreteFormat([]float64{1.0, 0.0}, map[float64]string{1.0: "yes", 0.0: "no"})
	return f
}

// UnitVectorFormat is a continuous format over [0, 1] with endpoint meanings.
func UnitVectorFormat() JudgeResponseFormat {
	f, _ := NewContinuousFormat(0.0, 1.0, map[float64]string{0.0: "lower", 1.0: "higher"})
	return f
}

var judgeFormatRegistry = map[string]func() JudgeResponseFormat{
	"binary":      BinaryFormat,
	"unit_vector": UnitVectorFormat,
}

// RegisteredJudgeFormat looks up a judge response format by its short
// registry tag (spec.md §6: "judge-format registries keyed by short
// string tags").
func RegisteredJudgeFormat(tag string) (JudgeResponseFormat, bool) {
	ctor, ok := judgeFormatRegistry[tag]
	if !ok {
		return JudgeResponseFormat{}, false
	}
	return ctor(), true
}

// Contains reports whether v is in the format's declared domain:
// set membership for discrete formats, interval membership for
// continuous ones.
func (f JudgeResponseFormat) Contains(v float64) bool {
	switch f.Kind {
	case FormatDiscrete:
		for _, opt := range f.Options {
			if opt == v {
				return true
			}
		}
		return false
	case FormatContinuous:
		lo, hi := f.Options[0], f.Options[1]
		return v >= lo && v <= hi
	default:
		return false
	}
}

// Equal performs the structural comparison spec.md §4.2 requires: two
// formats with the same options and meanings are interchangeable.
func (f JudgeResponseFormat) Equal(other JudgeResponseFormat) bool {
	if f.Kind != other.Kind || len(f.Options) != len(other.Options) {
		return false
	}
	for i, v := range f.Options {
		if other.Options[i] != v {
			return false
		}
	}
	if len(f.Meanings) != len(other.Meanings) {
		return false
	}
	for k, v := range f.Meanings {
		if other.Meanings[k] != v {
			return false
		}
	}
	return true
}

// Instructions returns the canonical instruction block injected into the
// judge prompt (spec.md §4.2): the required JSON shape, the allowed
// answer domain, human-readable meanings, and one concrete example using
// the first option as the example answer.
func (f JudgeResponseFormat) Instructions() string {
	var sb strings.Builder
	sb.WriteString(judgeResponseBaseStr)
	sb.WriteString(" ")

	switch f.Kind {
	case FormatDiscrete:
		sb.WriteString(fmt.Sprintf("The 'answer' field must be EXACTLY ONE of the following options: %s (type float64).", formatFloatSlice(f.Options)))
	case FormatContinuous:
		sb.WriteString(fmt.Sprintf("The 'answer' field must be between %v and %v (type float64).", f.Options[0], f.Options[1]))
	}
	sb.WriteString(" ")
	sb.WriteString(judgeResponseReasoningStr)

	if len(f.Meanings) > 0 {
		switch f.Kind {
		case FormatDiscrete:
			sb.WriteString("\nThe meaning of each answer option is: ")
			sb.WriteString(strings.Join(discreteMeaningStrings(f.Options, f.Meanings), ", "))
		case FormatContinuous:
			lo, hi := f.Options[0], f.Options[1]
			sb.WriteString(fmt.Sprintf("\nThe meaning of the lower bound %v is: %s. The meaning of the upper bound %v is: %s.",
				lo, f.Meanings[lo], hi, f.Meanings[hi]))
		}
	}

	sb.WriteString(fmt.Sprintf("\n\nExample format: {\"answer\": %v, \"reasoning\": \"Your explanation here\"}", f.Options[0]))
	return sb.String()
}

func discreteMeaningStrings(options []float64, meanings map[float64]string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if m, ok := meanings[opt]; ok {
			out = append(out, fmt.Sprintf("%v (meaning %s)", opt, m))
		}
	}
	return out
}

func formatFloatSlice(values []float64) string {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type judgeReplyDict struct {
	Answer    *float64 `json:"answer"`
	Reasoning *string  `json:"reasoning"`
}

// Parse decodes a judge reply into {answer, reasoning}, rejecting any
// reply whose answer is not in the declared domain (spec.md §4.2, §6).
func (f JudgeResponseFormat) Parse(reply string) (Answer, error) {
	extracted, err := extractJSONFromResponse(reply)
	if err != nil {
		return Answer{}, fmt.Errorf("could not locate a JSON object in judge reply: %w", err)
	}

	var dict judgeReplyDict
	if err := json.Unmarshal([]byte(extracted), &dict); err != nil {
		return Answer{}, fmt.Errorf("judge reply is not valid JSON: %w", err)
	}
	if dict.Answer == nil {
		return Answer{}, fmt.Errorf("judge reply missing required 'answer' field")
	}
	if dict.Reasoning == nil {
		return Answer{}, fmt.Errorf("judge reply missing required 'reasoning' field")
	}
	if !f.Contains(*dict.Answer) {
		return Answer{}, fmt.Errorf("judge answer %v is not in the declared domain %v", *dict.Answer, f.Options)
	}

	return NewAnswerWithReasoning(*dict.Answer, *dict.Reasoning), nil
}
