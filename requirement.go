package rubric

import "fmt"

// Requirement is an immutable DAG node: a question sent to the judge
// together with the response format it must answer in and, for
// non-terminal requirements, the map from answer value to the
// downstream requirement names that answer activates (spec.md §3).
type Requirement struct {
	Name           string
	Question       string
	ResponseFormat JudgeResponseFormat
	Dependencies   map[float64][]string
}

// NewRequirement validates invariant I1 (every dependency key is a
// member of the response format's domain) at construction and returns a
// ConfigError if it does not hold.
func NewRequirement(name, question string, format JudgeResponseFormat, dependencies map[float64][]string) (Requirement, error) {
	if name == "" {
		return Requirement{}, &ConfigError{Reason: "requirement name must not be empty"}
	}
	for key := range dependencies {
		if !format.Contains(key) {
			return Requirement{}, &ConfigError{
				Requirement: name,
				Reason:      fmt.Sprintf("dependency key %v is not a member of the response format's options %v", key, format.Options),
			}
		}
	}
	return Requirement{
		Name:           name,
		Question:       question,
		ResponseFormat: format,
		Dependencies:   dependencies,
	}, nil
}

// NewBinaryRequirement is a convenience constructor for the common case:
// a binary yes/no requirement using BinaryFormat().
func NewBinaryRequirement(name, question string, dependencies map[float64][]string) (Requirement, error) {
	return NewRequirement(name, question, BinaryFormat(), dependencies)
}

// Terminal reports whether this requirement has no downstream
// activation map. Per spec.md §9, this adopts the stricter of the two
// definitions the original source used inconsistently: an empty map is
// also terminal, not only a nil one.
func (r Requirement) Terminal() bool {
	return len(r.Dependencies) == 0
}

// downstreamNames flattens dependencies.values() into one slice, used
// only for topological layering (spec.md §4.1).
func (r Requirement) downstreamNames() []string {
	if r.Terminal() {
		return nil
	}
	var out []string
	for _, names := range r.Dependencies {
		out = append(out, names...)
	}
	return out
}
