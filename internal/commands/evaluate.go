package commands

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	rubric "github.com/jacobphillips99/go-rubric"
	"github.com/jacobphillips99/go-rubric/internal/help"
	"github.com/jacobphillips99/go-rubric/internal/reporting"
)

// EvaluateCmd handles the evaluate command: load a rubric and a
// scenario set, run every scenario through the configured evaluation
// mode, and print a styled report.
type EvaluateCmd struct {
	Quiet   bool   `help:"Suppress progress output, only show summary" short:"q"`
	Config  string `help:"Path to rubric run configuration file (YAML or JSON)" required:"" type:"path"`
	APIKey  string `help:"Anthropic API key (overrides ANTHROPIC_API_KEY env var)"`
	BaseURL string `help:"Base URL for Anthropic API (overrides ANTHROPIC_BASE_URL env var)"`
	Verbose bool   `help:"Show detailed per-requirement breakdown" short:"v"`
	Filter  string `help:"Regex pattern to filter which scenarios to run (matches against scenario name)" short:"f"`
	Mode    string `help:"Override evaluation mode from config: model_guided, reference_guided, exhaustive, adaptive"`
}

// Run executes the evaluate command.
func (e *EvaluateCmd) Run(globals *Globals) error {
	config, err := rubric.LoadConfig(e.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	modeName := config.Mode
	if e.Mode != "" {
		modeName = e.Mode
	}
	mode, ok := parseMode(modeName)
	if !ok {
		return fmt.Errorf("unknown evaluation mode %q", modeName)
	}

	requirements, err := rubric.LoadRequirements(config.RequirementsFile)
	if err != nil {
		return fmt.Errorf("failed to load requirements: %w", err)
	}

	if config.ScenariosFile == "" {
		return fmt.Errorf("scenarios_file is required to run the evaluate command")
	}
	scenarios, err := rubric.LoadScenarios(config.ScenariosFile)
	if err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}

	if e.Filter != "" {
		filtered, err := filterScenarios(scenarios, e.Filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
		if len(filtered) == 0 {
			return fmt.Errorf("no scenarios matched filter pattern: %s", e.Filter)
		}
		scenarios = filtered

		if !e.Quiet {
			fmt.Printf("Filter %q matched %d scenario(s)\n", e.Filter, len(filtered))
		}
	}

	strategy, ok := rubric.NewRewardStrategy(config.RewardStrategy.Tag)
	if !ok {
		return fmt.Errorf("unknown reward_strategy tag %q", config.RewardStrategy.Tag)
	}

	resolvedBaseURL := e.BaseURL
	if resolvedBaseURL == "" {
		resolvedBaseURL = os.Getenv("ANTHROPIC_BASE_URL")
	}
	judge := createJudge(config, e.APIKey, resolvedBaseURL)

	rb, err := rubric.NewRubric(requirements, judge, strategy)
	if err != nil {
		return fmt.Errorf("failed to construct rubric: %w", err)
	}

	var timeout time.Duration
	if config.Timeout != "" {
		timeout, err = time.ParseDuration(config.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if !e.Quiet {
		fmt.Printf("Running %d scenario(s) in %s mode...\n\n", len(scenarios), mode)
	}

	results, err := runScenarios(ctx, rb, scenarios, mode, e.Quiet)
	if err != nil {
		log.Error().Err(err).Msg("evaluation run failed")
		return err
	}

	if err := reporting.PrintStyledReport(results, e.Verbose); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if hasFailures(results) {
		return fmt.Errorf("one or more scenarios reported no_valid_path or an evaluation error")
	}

	return nil
}

func runScenarios(ctx context.Context, rb *rubric.Rubric, scenarios []rubric.Scenario, mode rubric.EvaluationMode, quiet bool) ([]reporting.ScenarioResult, error) {
	results := make([]reporting.ScenarioResult, len(scenarios))
	styles := help.DefaultStyles()

	for i, scenario := range scenarios {
		if !quiet {
			fmt.Printf("[%d/%d] %s\n", i+1, len(scenarios), scenario.Name)
		}

		record, err := rb.ScoreRollout(ctx, scenario.Prompt, scenario.Completion, scenario.Answers, mode)
		results[i] = reporting.ScenarioResult{Scenario: scenario, Record: record, Error: err}

		if !quiet {
			if err != nil {
				fmt.Println(styles.FormatJudgeWarning(fmt.Sprintf("  error: %v", err)))
				fmt.Println()
				continue
			}
			if record.TerminalCondition == rubric.NoValidPath {
				fmt.Println(styles.FormatJudgeWarning("  no_valid_path: the frontier emptied below the root layer"))
			}
			fmt.Printf("  reward=%.2f terminal=%s\n\n", record.Reward, record.TerminalCondition)
		}
	}

	return results, nil
}

func hasFailures(results []reporting.ScenarioResult) bool {
	for _, r := range results {
		if r.Error != nil {
			return true
		}
		if r.Record.TerminalCondition == rubric.NoValidPath {
			return true
		}
	}
	return false
}

// filterScenarios filters scenarios by regex pattern matching against
// scenario names.
func filterScenarios(scenarios []rubric.Scenario, pattern string) ([]rubric.Scenario, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var filtered []rubric.Scenario
	for _, s := range scenarios {
		if regex.MatchString(s.Name) {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}
