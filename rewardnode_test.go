package rubric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRewardNodeRejectsBadTemplate(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	_, err = NewRewardNode(req, newStubJudge(nil), "question={question} only")
	assert.Error(err)
}

func TestNewRewardNodeRejectsNilJudge(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	_, err = NewRewardNode(req, nil, "")
	assert.Error(err)
}

func TestRewardNodeEvaluateUsesScenarioReferenceAnswer(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	judge := newStubJudge(map[string]string{"is the scene safe?": yesAnswer})
	node, err := NewRewardNode(req, judge, "")
	assert.NoError(err)

	scenario := Scenario{
		Prompt:     "arrive at scene",
		Completion: "I check for hazards",
		Answers:    map[string]Answer{"scene_safety": NewScalarAnswer(1.0)},
	}

	answer, err := node.Evaluate(context.Background(), scenario)
	assert.NoError(err)
	assert.Equal(1.0, answer.Value())

	assert.Len(judge.Prompts, 1)
	assert.Contains(judge.Prompts[0], "ground truth answer=1")
}

func TestRewardNodeEvaluateDefaultsMissingAnswerToZero(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	judge := newStubJudge(map[string]string{"is the scene safe?": noAnswer})
	node, err := NewRewardNode(req, judge, "")
	assert.NoError(err)

	scenario := Scenario{Prompt: "arrive at scene", Completion: "I check for hazards"}

	answer, err := node.Evaluate(context.Background(), scenario)
	assert.NoError(err)
	assert.Equal(0.0, answer.Value())
	assert.Contains(judge.Prompts[0], "ground truth answer=0")
}

func TestRewardNodeEvaluateWrapsJudgeFailure(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	judge := newStubJudge(nil)
	judge.err = map[string]error{"is the scene safe?": assertErr}
	node, err := NewRewardNode(req, judge, "")
	assert.NoError(err)

	_, err = node.Evaluate(context.Background(), Scenario{})
	assert.Error(err)
	var judgeErr *JudgeError
	assert.ErrorAs(err, &judgeErr)
	assert.Equal("scene_safety", judgeErr.Requirement)
}

func TestRewardNodeEvaluateWrapsParseFailure(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	judge := newStubJudge(map[string]string{"is the scene safe?": `{"answer": 5.0, "reasoning": "out of domain"}`})
	node, err := NewRewardNode(req, judge, "")
	assert.NoError(err)

	_, err = node.Evaluate(context.Background(), Scenario{})
	assert.Error(err)
	var judgeErr *JudgeError
	assert.ErrorAs(err, &judgeErr)
}

var assertErr = errTimedOut{}

type errTimedOut struct{}

func (errTimedOut) Error() string { return "request timed out" }
