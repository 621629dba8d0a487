package rubric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConversationStateInitializesFromScenario(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	scenario := Scenario{
		Answers: map[string]Answer{"scene_safety": NewAnswerWithReasoning(1.0, "hazards cleared")},
	}
	state := NewConversationState(scenario)

	assert.Equal(0, state.LevelIdx)
	assert.False(state.Finished)
	assert.Equal(map[string]float64{"scene_safety": 1.0}, state.answersGT)
	reasoning, ok := backgroundReasoning(state.rawAnswersGT, "scene_safety")
	assert.True(ok)
	assert.Equal("hazards cleared", reasoning)
}

func TestNextConversationStepAdvancesFrontierAndRevealsInfo(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := firstResponderJudgeAllYes(t)
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	scenario := Scenario{
		Prompt: "you arrive at the scene",
		Answers: map[string]Answer{
			"scene_safety": NewAnswerWithReasoning(1.0, "no visible hazards"),
			"assess_abc":   NewScalarAnswer(1.0),
			"assess_vitals": NewScalarAnswer(1.0),
			"treat":        NewScalarAnswer(1.0),
		},
		RevealedInfo: map[string]map[string]string{
			"scene_safety": {"1.0": "The scene is confirmed safe."},
		},
	}
	state := NewConversationState(scenario)

	reply, state, err := rb.NextConversationStep(context.Background(), []Message{
		{Role: RoleUser, Content: scenario.Prompt},
		{Role: RoleAssistant, Content: "I check the area before approaching"},
	}, state)
	assert.NoError(err)
	assert.False(state.Finished)
	assert.Equal(1, state.LevelIdx)
	assert.ElementsMatch([]string{"assess_abc", "assess_vitals"}, state.ActiveReqs)
	assert.Contains(reply, "The scene is confirmed safe.")
	assert.Contains(reply, "Question (assess_abc):")
	assert.Contains(reply, "Question (assess_vitals):")
}

func TestNextConversationStepFinishesWhenFrontierEmpties(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	judge := newStubJudge(map[string]string{
		"Does the response consider if the scene is safe to approach?": noAnswer,
	})
	rb, err := NewRubric(firstResponderRequirements(t), judge, nil)
	assert.NoError(err)

	scenario := Scenario{
		Prompt:  "you arrive at the scene",
		Answers: map[string]Answer{"scene_safety": NewScalarAnswer(0.0)},
	}
	state := NewConversationState(scenario)

	reply, state, err := rb.NextConversationStep(context.Background(), []Message{
		{Role: RoleUser, Content: scenario.Prompt},
		{Role: RoleAssistant, Content: "the scene looks unsafe, I withdraw"},
	}, state)
	assert.NoError(err)
	assert.True(state.Finished)
	assert.Contains(reply, "No further information is available")
}

func TestNextConversationStepReturnsImmediatelyWhenAlreadyFinished(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	state := NewConversationState(Scenario{})
	state.Finished = true

	reply, newState, err := rb.NextConversationStep(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, state)
	assert.NoError(err)
	assert.Equal("", reply)
	assert.True(newState.Finished)
}

func TestNextConversationStepRejectsEmptyMessages(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	_, _, err = rb.NextConversationStep(context.Background(), nil, NewConversationState(Scenario{}))
	assert.Error(err)
	var validationErr *ValidationError
	assert.ErrorAs(err, &validationErr)
}

func TestLastAssistantContent(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	messages := []Message{
		{Role: RoleUser, Content: "prompt"},
		{Role: RoleAssistant, Content: "first reply"},
		{Role: RoleUser, Content: "follow-up"},
		{Role: RoleAssistant, Content: "second reply"},
	}
	assert.Equal("second reply", lastAssistantContent(messages))
	assert.Equal("", lastAssistantContent([]Message{{Role: RoleUser, Content: "only user"}}))
}

func TestPyFloatString(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	assert.Equal("1.0", pyFloatString(1.0))
	assert.Equal("0.0", pyFloatString(0.0))
	assert.Equal("0.5", pyFloatString(0.5))
	assert.Equal("-1.0", pyFloatString(-1.0))
}

func TestRevealedKeyMatchesPythonStrFloatConvention(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	// spec.md §8 seed test 5: revealed_info set must contain
	// "scene_safety_1.0", not the bare-integer "scene_safety_1" that
	// Go's fmt "%v" verb would produce for a whole-number float.
	assert.Equal("scene_safety_1.0", revealedKey("scene_safety", 1.0))
}
