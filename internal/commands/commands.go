package commands

import (
	rubric "github.com/jacobphillips99/go-rubric"
)

// Globals contains flags shared across all commands.
type Globals struct{}

func createJudge(config *rubric.RubricRunConfig, apiKey, baseURL string) *rubric.AnthropicJudge {
	judgeConfig := rubric.AnthropicJudgeConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   config.JudgeModel,
	}

	if config.MaxTokens > 0 {
		judgeConfig.MaxTokens = int(config.MaxTokens)
	}
	if config.EnablePromptCaching != nil {
		judgeConfig.EnablePromptCaching = config.EnablePromptCaching
	}
	if config.CacheTTL != "" {
		judgeConfig.CacheTTL = config.CacheTTL
	}

	return rubric.NewAnthropicJudge(judgeConfig)
}

func parseMode(name string) (rubric.EvaluationMode, bool) {
	switch name {
	case "", "model_guided":
		return rubric.ModelGuided, true
	case "reference_guided":
		return rubric.ReferenceGuided, true
	case "exhaustive":
		return rubric.Exhaustive, true
	case "adaptive":
		return rubric.Adaptive, true
	default:
		return 0, false
	}
}
