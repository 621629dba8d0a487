package rubric

import (
	"fmt"
	"sort"
)

// Rubric holds the ordered requirement list, per-requirement indices,
// and the topological layer partition computed once at construction
// (spec.md §3 "Rubric"). It is immutable after NewRubric returns and
// may be shared freely across concurrent evaluations of distinct
// scenarios.
type Rubric struct {
	requirements []Requirement
	byName       map[string]Requirement
	nodes        map[string]*RewardNode
	downstream   map[string][]string
	levels       [][]string

	rewardStrategy RewardStrategy
}

// NewRubric validates invariants I1 (already checked per-requirement by
// NewRequirement), I2 (every referenced downstream name exists in the
// rubric) and I3 (acyclicity, via topologicalLevels) and builds the
// reward node for every requirement against a single shared judge
// client (spec.md §3, §4.1). A nil rewardStrategy defaults to "sum".
func NewRubric(requirements []Requirement, judge Judge, rewardStrategy RewardStrategy) (*Rubric, error) {
	byName := make(map[string]Requirement, len(requirements))
	for _, req := range requirements {
		if _, dup := byName[req.Name]; dup {
			return nil, &ConfigError{Requirement: req.Name, Reason: "duplicate requirement name"}
		}
		byName[req.Name] = req
	}

	downstream := make(map[string][]string, len(requirements))
	graph := make(map[string][]string, len(requirements))
	for _, req := range requirements {
		names := req.downstreamNames()
		downstream[req.Name] = names
		graph[req.Name] = names
		for _, child := range names {
			if _, ok := byName[child]; !ok {
				return nil, &ConfigError{
					Requirement: req.Name,
					Reason:      fmt.Sprintf("dependency references unknown requirement %q", child),
				}
			}
		}
	}

	levels, err := topologicalLevels(graph)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*RewardNode, len(requirements))
	for _, req := range requirements {
		node, err := NewRewardNode(req, judge, DefaultJudgePromptTemplate)
		if err != nil {
			return nil, err
		}
		nodes[req.Name] = node
	}

	if rewardStrategy == nil {
		rewardStrategy = SumRewardStrategy{}
	}

	return &Rubric{
		requirements:   requirements,
		byName:         byName,
		nodes:          nodes,
		downstream:     downstream,
		levels:         levels,
		rewardStrategy: rewardStrategy,
	}, nil
}

// Len returns the total number of requirements in the rubric.
func (r *Rubric) Len() int {
	return len(r.requirements)
}

// Levels returns the root-first layer partition computed at
// construction (spec.md §4.1, invariant P1).
func (r *Rubric) Levels() [][]string {
	out := make([][]string, len(r.levels))
	for i, layer := range r.levels {
		out[i] = append([]string(nil), layer...)
	}
	return out
}

// Names returns every requirement name in the rubric, sorted.
func (r *Rubric) Names() []string {
	out := make([]string, 0, len(r.requirements))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Rubric) requirement(name string) (Requirement, bool) {
	req, ok := r.byName[name]
	return req, ok
}

func (r *Rubric) node(name string) (*RewardNode, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// rootNames returns layer 0, or nil for an empty rubric (B1).
func (r *Rubric) rootNames() []string {
	if len(r.levels) == 0 {
		return nil
	}
	return r.levels[0]
}

// Validate implements spec.md §4.4 "Validation": every key in
// scenario.Answers must name a known requirement, every non-nil answer
// must lie within that requirement's response domain, and
// reference-guided mode additionally requires a non-empty answers map.
// Validation never calls the judge.
func (r *Rubric) Validate(scenario Scenario, mode EvaluationMode) error {
	if mode == ReferenceGuided && len(scenario.Answers) == 0 {
		return &ValidationError{Reason: "reference-guided mode requires a non-empty scenario.answers map"}
	}

	for name, answer := range scenario.Answers {
		req, ok := r.byName[name]
		if !ok {
			return &ValidationError{Requirement: name, Reason: "scenario answer names an unknown requirement"}
		}
		if !req.ResponseFormat.Contains(answer.Value()) {
			return &ValidationError{
				Requirement: name,
				Reason:      fmt.Sprintf("answer %v is not in the declared domain %v", answer.Value(), req.ResponseFormat.Options),
			}
		}
	}

	for name := range scenario.RevealedInfo {
		if _, ok := r.byName[name]; !ok {
			return &ValidationError{Requirement: name, Reason: "revealed_info names an unknown requirement"}
		}
	}

	return nil
}
