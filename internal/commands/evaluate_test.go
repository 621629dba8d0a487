package commands

import (
	"testing"

	rubric "github.com/jacobphillips99/go-rubric"
	"github.com/stretchr/testify/require"
)

func TestFilterScenarios(t *testing.T) {
	scenarios := []rubric.Scenario{
		{Name: "scene_safe_basic"},
		{Name: "scene_safe_triage"},
		{Name: "patient_unconscious"},
		{Name: "patient_responsive"},
		{Name: "admin_scene_safe"},
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "match prefix",
			pattern:  "^scene",
			expected: []string{"scene_safe_basic", "scene_safe_triage"},
		},
		{
			name:     "match suffix",
			pattern:  "safe$",
			expected: []string{"admin_scene_safe"},
		},
		{
			name:     "match substring",
			pattern:  "patient",
			expected: []string{"patient_unconscious", "patient_responsive"},
		},
		{
			name:     "no matches",
			pattern:  "nonexistent",
			expected: nil,
		},
		{
			name:    "invalid regex",
			pattern: "[invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert := require.New(t)

			result, err := filterScenarios(scenarios, tt.pattern)
			if tt.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)

			var names []string
			for _, s := range result {
				names = append(names, s.Name)
			}
			assert.Equal(tt.expected, names)
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	mode, ok := parseMode("")
	assert.True(ok)
	assert.Equal(rubric.ModelGuided, mode)

	mode, ok = parseMode("adaptive")
	assert.True(ok)
	assert.Equal(rubric.Adaptive, mode)

	_, ok = parseMode("not_a_mode")
	assert.False(ok)
}
