package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioContent(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	s := Scenario{Prompt: "scene described", Completion: "I would approach carefully"}
	assert.Equal("prompt: scene described\ncompletion: I would approach carefully", s.Content())
}

func TestScenarioFlattenAnswers(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	s := Scenario{Answers: map[string]Answer{
		"scene_safety": NewScalarAnswer(1.0),
		"assess_abc":   NewAnswerWithReasoning(0.0, "patient is conscious"),
	}}
	flat := s.flattenAnswers()
	assert.Equal(map[string]float64{"scene_safety": 1.0, "assess_abc": 0.0}, flat)
}

func TestScenarioFlattenAnswersEmpty(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	var s Scenario
	assert.Nil(s.flattenAnswers())
}
