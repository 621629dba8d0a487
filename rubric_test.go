package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRubricBuildsLevelsAndNodes(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	requirements := firstResponderRequirements(t)
	judge := newStubJudge(nil)

	rb, err := NewRubric(requirements, judge, nil)
	assert.NoError(err)
	assert.Equal(4, rb.Len())
	assert.Equal([][]string{{"scene_safety"}, {"assess_abc", "assess_vitals"}, {"treat"}}, rb.Levels())
	assert.Equal([]string{"assess_abc", "assess_vitals", "scene_safety", "treat"}, rb.Names())

	// Defaults to sum when no strategy is supplied.
	assert.Equal("sum", rb.rewardStrategy.Name())
}

func TestNewRubricRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", nil)
	assert.NoError(err)

	_, err = NewRubric([]Requirement{req, req}, newStubJudge(nil), nil)
	assert.Error(err)
	var configErr *ConfigError
	assert.ErrorAs(err, &configErr)
}

func TestNewRubricRejectsUnknownDependencyTarget(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	req, err := NewBinaryRequirement("scene_safety", "is the scene safe?", map[float64][]string{
		1.0: {"does_not_exist"},
	})
	assert.NoError(err)

	_, err = NewRubric([]Requirement{req}, newStubJudge(nil), nil)
	assert.Error(err)
	var configErr *ConfigError
	assert.ErrorAs(err, &configErr)
}

func TestNewRubricRejectsCycle(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	a, err := NewBinaryRequirement("a", "a?", map[float64][]string{1.0: {"b"}, 0.0: {"b"}})
	assert.NoError(err)
	b, err := NewBinaryRequirement("b", "b?", map[float64][]string{1.0: {"a"}, 0.0: {"a"}})
	assert.NoError(err)

	_, err = NewRubric([]Requirement{a, b}, newStubJudge(nil), nil)
	assert.Error(err)
}

func TestRubricValidateScenario(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	rb, err := NewRubric(firstResponderRequirements(t), newStubJudge(nil), nil)
	assert.NoError(err)

	assert.NoError(rb.Validate(Scenario{Answers: map[string]Answer{"scene_safety": NewScalarAnswer(1.0)}}, ModelGuided))

	err = rb.Validate(Scenario{Answers: map[string]Answer{"not_a_requirement": NewScalarAnswer(1.0)}}, ModelGuided)
	assert.Error(err)
	var validationErr *ValidationError
	assert.ErrorAs(err, &validationErr)

	err = rb.Validate(Scenario{Answers: map[string]Answer{"scene_safety": NewScalarAnswer(0.5)}}, ModelGuided)
	assert.Error(err)
	assert.ErrorAs(err, &validationErr)

	err = rb.Validate(Scenario{}, ReferenceGuided)
	assert.Error(err)
	assert.ErrorAs(err, &validationErr)

	err = rb.Validate(Scenario{
		Answers:      map[string]Answer{"scene_safety": NewScalarAnswer(1.0)},
		RevealedInfo: map[string]map[string]string{"not_a_requirement": {"1": "text"}},
	}, ModelGuided)
	assert.Error(err)
	assert.ErrorAs(err, &validationErr)
}
