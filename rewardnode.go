package rubric

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// RewardNode binds one Requirement to the Judge that evaluates it and
// the prompt template used to build the judge call (spec.md §4.3). A
// Rubric holds one RewardNode per requirement.
type RewardNode struct {
	Requirement Requirement
	judge       Judge
	template    string
}

// NewRewardNode validates the prompt template's four slots at
// construction time (spec.md §4.3 step 3) and returns a ConfigError if
// any are missing.
func NewRewardNode(requirement Requirement, judge Judge, promptTemplate string) (*RewardNode, error) {
	if promptTemplate == "" {
		promptTemplate = DefaultJudgePromptTemplate
	}
	if err := validateJudgePromptTemplate(promptTemplate); err != nil {
		return nil, err
	}
	if judge == nil {
		return nil, &ConfigError{Requirement: requirement.Name, Reason: "judge must not be nil"}
	}
	return &RewardNode{Requirement: requirement, judge: judge, template: promptTemplate}, nil
}

// Evaluate scores one requirement against a scenario (spec.md §4.3
// steps 1-5). When the scenario has no reference answer for this
// requirement it logs a warning and puts 0 in the prompt's ground-truth
// slot rather than failing the whole walk; the judge is still called and
// its parsed answer is returned. A missing answer is common in
// partially-specified scenarios and must not abort sibling requirements
// at the same level.
func (n *RewardNode) Evaluate(ctx context.Context, scenario Scenario) (Answer, error) {
	refAnswer, ok := scenario.Answers[n.Requirement.Name]
	if !ok {
		log.Warn().
			Str("requirement", n.Requirement.Name).
			Msg("scenario has no reference answer for requirement; using zero value")
		refAnswer = NewScalarAnswer(0)
	}

	prompt := renderJudgePrompt(
		n.template,
		n.Requirement.Question,
		scenario.Content(),
		refAnswer.Value(),
		n.Requirement.ResponseFormat.Instructions(),
	)

	reply, err := n.judge.Ask(ctx, prompt)
	if err != nil {
		return Answer{}, &JudgeError{Requirement: n.Requirement.Name, Err: err}
	}

	answer, err := n.Requirement.ResponseFormat.Parse(reply)
	if err != nil {
		return Answer{}, &JudgeError{Requirement: n.Requirement.Name, Err: fmt.Errorf("parsing judge reply: %w", err)}
	}
	return answer, nil
}
