package rubric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func firstResponderJudgeAllYes(t testingT) *stubJudge {
	return newStubJudge(map[string]string{
		"Does the response consider if the scene is safe to approach?":                      yesAnswer,
		"Does the response consider the patient's airway, breathing, and circulation?":       yesAnswer,
		"Does the response consider if the patient's vital signs are stable?":                yesAnswer,
		"Does the response describe an appropriate treatment plan?":                          yesAnswer,
	})
}

func TestEvaluateModelGuidedWalksFullDAGWhenAllYes(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), firstResponderJudgeAllYes(t), nil)
	assert.NoError(err)

	table, err := rb.EvaluateModelGuided(context.Background(), Scenario{Prompt: "p", Completion: "c"})
	assert.NoError(err)

	assert.Equal(1.0, table[0]["scene_safety"].Answer)
	assert.Equal(1.0, table[1]["assess_abc"].Answer)
	assert.Equal(1.0, table[1]["assess_vitals"].Answer)
	assert.Equal(1.0, table[2]["treat"].Answer)
}

func TestEvaluateModelGuidedStopsAtUnsafeScene(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := newStubJudge(map[string]string{
		"Does the response consider if the scene is safe to approach?": noAnswer,
	})
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	table, err := rb.EvaluateModelGuided(context.Background(), Scenario{})
	assert.NoError(err)
	assert.Len(table, 1)
	assert.Equal(0.0, table[0]["scene_safety"].Answer)
}

func TestEvaluateExhaustiveIgnoresDependencies(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := newStubJudge(map[string]string{
		"Does the response consider if the scene is safe to approach?":                noAnswer,
		"Does the response consider the patient's airway, breathing, and circulation?": yesAnswer,
		"Does the response consider if the patient's vital signs are stable?":          yesAnswer,
		"Does the response describe an appropriate treatment plan?":                    yesAnswer,
	})
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	table, err := rb.EvaluateExhaustive(context.Background(), Scenario{})
	assert.NoError(err)
	assert.Len(table[0], 4)
}

func TestEvaluateReferenceGuidedDropsFrontierWithoutReference(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := firstResponderJudgeAllYes(t)
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	scenario := Scenario{
		Answers: map[string]Answer{
			"scene_safety": NewScalarAnswer(1.0),
			"assess_abc":   NewScalarAnswer(1.0),
			// assess_vitals intentionally has no reference answer.
		},
	}

	table, err := rb.EvaluateReferenceGuided(context.Background(), scenario)
	assert.NoError(err)
	assert.Contains(table[1], "assess_abc")
	assert.NotContains(table[1], "assess_vitals")
	// treat has no reference answer of its own, so it is dropped from
	// the frontier before it would ever be evaluated at level 2 -
	// filtering happens on every advance, not only the initial layer.
	assert.NotContains(table, 2)
}

func TestEvaluateAdaptiveZeroDepthIsImmediatelyCompleted(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	result := rb.EvaluateAdaptive(context.Background(), Scenario{}, 0)
	assert.Equal(Completed, result.TerminalCondition)
	assert.Empty(result.State)
}

func TestEvaluateAdaptiveRootFrontierEmptyIsCompleted(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := newStubJudge(map[string]string{
		"Does the response consider if the scene is safe to approach?": noAnswer,
	})
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	result := rb.EvaluateAdaptive(context.Background(), Scenario{}, defaultMaxDepth)
	assert.Equal(Completed, result.TerminalCondition)
	assert.Len(result.CompletedRequirements, 1)
}

func TestEvaluateAdaptiveLaterFrontierEmptyIsNoValidPath(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	// In the shared fixture scene_safety=yes fans out to
	// assess_abc/assess_vitals, which both lead on to "treat"; here
	// scene_safety=yes unlocks only assess_abc, a dependency-free
	// terminal requirement, so the frontier after layer 1 is empty at
	// level > 0.
	sceneSafety, err := NewBinaryRequirement("scene_safety", "is the scene safe?", map[float64][]string{
		1.0: {"assess_abc"},
		0.0: {},
	})
	assert.NoError(err)
	assessABC, err := NewBinaryRequirement("assess_abc", "assess abc?", nil)
	assert.NoError(err)

	judge := newStubJudge(map[string]string{
		"is the scene safe?": yesAnswer,
		"assess abc?":         yesAnswer,
	})
	rb, err := NewRubric([]Requirement{sceneSafety, assessABC}, judge, nil)
	assert.NoError(err)

	result := rb.EvaluateAdaptive(context.Background(), Scenario{}, defaultMaxDepth)
	assert.Equal(NoValidPath, result.TerminalCondition)
}

func TestEvaluateAdaptiveRecordsJudgeErrorAndContinues(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := newStubJudge(nil)
	judge.err = map[string]error{"Does the response consider if the scene is safe to approach?": errTimedOut{}}
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	result := rb.EvaluateAdaptive(context.Background(), Scenario{}, defaultMaxDepth)
	entry := result.State[0]["scene_safety"]
	assert.Equal(0.0, entry.Answer)
	assert.Contains(entry.Reasoning, "judge error")
	// The fallback 0.0 score routes to scene_safety's empty 0.0 branch,
	// so the frontier empties at the root layer (level 0) -> completed,
	// not no_valid_path (spec.md §9 asymmetry is keyed on the layer
	// index, not on whether the emptying was judge-error-induced).
	assert.Equal(Completed, result.TerminalCondition)
}

func TestEvaluateDispatchRunsValidationFirst(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	_, err = rb.Evaluate(context.Background(), Scenario{Answers: map[string]Answer{"nope": NewScalarAnswer(1.0)}}, ModelGuided)
	assert.Error(err)
	var validationErr *ValidationError
	assert.ErrorAs(err, &validationErr)
}

func TestScoreRolloutReducesThroughConfiguredStrategy(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := firstResponderJudgeAllYes(t)
	rb, err := NewRubric(firstResponderRequirements(t), judge, MeanRewardStrategy{})
	assert.NoError(err)

	record, err := rb.ScoreRollout(context.Background(), "prompt", "completion", nil, ModelGuided)
	assert.NoError(err)
	assert.Equal("mean", record.RewardStrategy)
	assert.Equal(1.0, record.Reward)
	assert.Equal(4, record.TotalRequirements)
	assert.Equal(Completed, record.TerminalCondition)
}

func TestNextFrontierSkipsTerminalRequirements(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	next := rb.nextFrontier(map[string]float64{"treat": 1.0})
	assert.Empty(next)
}
