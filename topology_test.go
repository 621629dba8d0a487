package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopologicalLevelsLinearChain(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	graph := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {},
	}
	levels, err := topologicalLevels(graph)
	assert.NoError(err)
	assert.Equal([][]string{{"a"}, {"b"}, {"c"}}, levels)
}

func TestTopologicalLevelsBranchingIsSortedWithinLayer(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	graph := map[string][]string{
		"root": {"z_branch", "a_branch"},
		"z_branch": {"leaf"},
		"a_branch": {"leaf"},
		"leaf":     {},
	}
	levels, err := topologicalLevels(graph)
	assert.NoError(err)
	assert.Equal([][]string{{"root"}, {"a_branch", "z_branch"}, {"leaf"}}, levels)
}

func TestTopologicalLevelsMultipleRoots(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	graph := map[string][]string{
		"root_b": {},
		"root_a": {},
	}
	levels, err := topologicalLevels(graph)
	assert.NoError(err)
	assert.Equal([][]string{{"root_a", "root_b"}}, levels)
}

func TestTopologicalLevelsDetectsCycle(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	graph := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	_, err := topologicalLevels(graph)
	assert.Error(err)
	var configErr *ConfigError
	assert.ErrorAs(err, &configErr)
}

func TestTopologicalLevelsEmptyGraph(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	levels, err := topologicalLevels(map[string][]string{})
	assert.NoError(err)
	assert.Empty(levels)
}
