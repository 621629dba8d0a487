package rubric

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// responseFormatYAML is the on-disk shape of a JudgeResponseFormat
// (spec.md §6 "Rubric persistence").
type responseFormatYAML struct {
	Type     string             `yaml:"type"`
	Options  []float64          `yaml:"options"`
	Meanings map[string]string  `yaml:"meanings,omitempty"`
}

func (f JudgeResponseFormat) toYAML() responseFormatYAML {
	meanings := make(map[string]string, len(f.Meanings))
	for k, v := range f.Meanings {
		meanings[formatFloatKey(k)] = v
	}
	kind := "discrete"
	if f.Kind == FormatContinuous {
		kind = "continuous"
	}
	return responseFormatYAML{Type: kind, Options: append([]float64(nil), f.Options...), Meanings: meanings}
}

func (y responseFormatYAML) toFormat() (JudgeResponseFormat, error) {
	meanings := make(map[float64]string, len(y.Meanings))
	for k, v := range y.Meanings {
		parsed, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return JudgeResponseFormat{}, fmt.Errorf("meaning key %q is not numeric: %w", k, err)
		}
		meanings[parsed] = v
	}

	switch y.Type {
	case "discrete":
		return NewDiscreteFormat(y.Options, meanings)
	case "continuous":
		if len(y.Options) != 2 {
			return JudgeResponseFormat{}, fmt.Errorf("continuous response format requires exactly two options (lo, hi), got %d", len(y.Options))
		}
		return NewContinuousFormat(y.Options[0], y.Options[1], meanings)
	default:
		return JudgeResponseFormat{}, fmt.Errorf("unknown response format type %q", y.Type)
	}
}

func formatFloatKey(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// requirementYAML is the on-disk shape of one Requirement record.
type requirementYAML struct {
	Name           string              `yaml:"name"`
	Question       string              `yaml:"question"`
	ResponseFormat responseFormatYAML  `yaml:"response_format"`
	Dependencies   map[string][]string `yaml:"dependencies,omitempty"`
}

func (r Requirement) toYAML() requirementYAML {
	var deps map[string][]string
	if len(r.Dependencies) > 0 {
		deps = make(map[string][]string, len(r.Dependencies))
		for k, v := range r.Dependencies {
			deps[formatFloatKey(k)] = append([]string(nil), v...)
		}
	}
	return requirementYAML{
		Name:           r.Name,
		Question:       r.Question,
		ResponseFormat: r.ResponseFormat.toYAML(),
		Dependencies:   deps,
	}
}

func (y requirementYAML) toRequirement() (Requirement, error) {
	format, err := y.ResponseFormat.toFormat()
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: %w", y.Name, err)
	}

	var deps map[float64][]string
	if len(y.Dependencies) > 0 {
		deps = make(map[float64][]string, len(y.Dependencies))
		for k, v := range y.Dependencies {
			parsed, err := strconv.ParseFloat(k, 64)
			if err != nil {
				return Requirement{}, fmt.Errorf("requirement %q: dependency key %q is not numeric: %w", y.Name, k, err)
			}
			deps[parsed] = v
		}
	}

	return NewRequirement(y.Name, y.Question, format, deps)
}

// SaveRequirements writes an ordered requirement sequence to path as
// YAML (spec.md §6: "<prefix>_requirements.yaml").
func SaveRequirements(requirements []Requirement, path string) error {
	records := make([]requirementYAML, len(requirements))
	for i, req := range requirements {
		records[i] = req.toYAML()
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling requirements: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadRequirements reads an ordered requirement sequence from path.
// Invariant I1 is re-checked by NewRequirement as each record is
// decoded; I2/I3 are checked by the caller's subsequent NewRubric call
// (spec.md §6: "loaders must reject a file whose requirements graph
// fails invariants I1-I3").
func LoadRequirements(path string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []requirementYAML
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	requirements := make([]Requirement, len(records))
	for i, rec := range records {
		req, err := rec.toRequirement()
		if err != nil {
			return nil, err
		}
		requirements[i] = req
	}
	return requirements, nil
}

// rubricYAML is the on-disk shape of "<prefix>_rubric.yaml": everything
// needed to reconstruct a Rubric besides the requirement list itself.
type rubricYAML struct {
	RewardStrategy RewardStrategyConfig `yaml:"reward_strategy"`
	JudgeModel     string               `yaml:"judge_model,omitempty"`
}

// SaveRubric writes the "<prefix>_requirements.yaml" / "<prefix>_rubric.yaml"
// pair described in spec.md §6.
func SaveRubric(rb *Rubric, judgeModel string, prefix string) error {
	if err := SaveRequirements(rb.requirements, prefix+"_requirements.yaml"); err != nil {
		return err
	}

	meta := rubricYAML{
		RewardStrategy: RewardStrategyConfig{Tag: rb.rewardStrategy.Name()},
		JudgeModel:     judgeModel,
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling rubric metadata: %w", err)
	}
	if err := os.WriteFile(prefix+"_rubric.yaml", data, 0o644); err != nil {
		return fmt.Errorf("writing %s_rubric.yaml: %w", prefix, err)
	}
	return nil
}

// LoadRubric is SaveRubric's inverse: it reads both files and
// reconstructs a Rubric against the supplied judge client (round-trip
// property R1).
func LoadRubric(prefix string, judge Judge) (*Rubric, error) {
	requirements, err := LoadRequirements(prefix + "_requirements.yaml")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(prefix + "_rubric.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading %s_rubric.yaml: %w", prefix, err)
	}
	var meta rubricYAML
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s_rubric.yaml: %w", prefix, err)
	}

	strategy, ok := NewRewardStrategy(meta.RewardStrategy.Tag)
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown reward_strategy tag %q in %s_rubric.yaml", meta.RewardStrategy.Tag, prefix)}
	}

	return NewRubric(requirements, judge, strategy)
}

// scenarioYAML is the on-disk shape of one Scenario record (spec.md §6:
// "fields name, description, prompt, completion, answers,
// revealed_info").
type scenarioYAML struct {
	Name         string                       `yaml:"name,omitempty"`
	Description  string                       `yaml:"description,omitempty"`
	Prompt       string                       `yaml:"prompt"`
	Completion   string                       `yaml:"completion,omitempty"`
	Answers      map[string]Answer            `yaml:"answers,omitempty"`
	RevealedInfo map[string]map[string]string `yaml:"revealed_info,omitempty"`
}

func (s Scenario) toYAML() scenarioYAML {
	return scenarioYAML{
		Name:         s.Name,
		Description:  s.Description,
		Prompt:       s.Prompt,
		Completion:   s.Completion,
		Answers:      s.Answers,
		RevealedInfo: s.RevealedInfo,
	}
}

func (y scenarioYAML) toScenario() Scenario {
	return Scenario{
		Name:         y.Name,
		Description:  y.Description,
		Prompt:       y.Prompt,
		Completion:   y.Completion,
		Answers:      y.Answers,
		RevealedInfo: y.RevealedInfo,
	}
}

// SaveScenarios writes a scenario sequence to path as YAML (spec.md §6,
// round-trip property R2).
func SaveScenarios(scenarios []Scenario, path string) error {
	records := make([]scenarioYAML, len(scenarios))
	for i, s := range scenarios {
		records[i] = s.toYAML()
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling scenarios: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadScenarios reads a scenario sequence from path.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []scenarioYAML
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	scenarios := make([]Scenario, len(records))
	for i, rec := range records {
		scenarios[i] = rec.toScenario()
	}
	return scenarios, nil
}

// sortedRequirementNames is a small helper used by tests asserting
// round-trip equality without depending on map iteration order.
func sortedRequirementNames(requirements []Requirement) []string {
	names := make([]string, len(requirements))
	for i, r := range requirements {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}
