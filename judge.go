package rubric

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultJudgePromptTemplate is the four-slot template every RewardNode
// validates against at construction (spec.md §4.3 step 3, §6).
const DefaultJudgePromptTemplate = `Given a question and the ground truth answer, determine if the response is correct. Respond according to the judge response format.

question={question}
response={response}
ground truth answer={answer}
judge response format={judge_response_format}`

var requiredPromptSlots = []string{"question", "response", "answer", "judge_response_format"}

var promptSlotPattern = regexp.MustCompile(`\{(\w+)\}`)

// validateJudgePromptTemplate enforces that a judge prompt template
// contains exactly the four required named slots (spec.md §4.3, §7:
// "judge prompt template missing one of the four required slots").
func validateJudgePromptTemplate(template string) error {
	matches := promptSlotPattern.FindAllStringSubmatch(template, -1)
	found := make(map[string]bool, len(matches))
	for _, m := range matches {
		found[m[1]] = true
	}

	for _, slot := range requiredPromptSlots {
		if !found[slot] {
			return &ConfigError{Reason: fmt.Sprintf("judge prompt template is missing required slot {%s}", slot)}
		}
	}
	if len(found) != len(requiredPromptSlots) {
		return &ConfigError{Reason: fmt.Sprintf("judge prompt template must contain exactly these slots: %v", requiredPromptSlots)}
	}
	return nil
}

func renderJudgePrompt(template, question, response string, answer float64, formatInstructions string) string {
	replacer := strings.NewReplacer(
		"{question}", question,
		"{response}", response,
		"{answer}", fmt.Sprintf("%v", answer),
		"{judge_response_format}", formatInstructions,
	)
	return replacer.Replace(template)
}

// Judge is the external collaborator the engine calls once per
// requirement (spec.md §1, §6): a single prompt in, a single raw reply
// out. Parsing and domain validation of the reply happen in
// JudgeResponseFormat.Parse, not here — Judge implementations are free
// to be as simple as a test stub or as involved as AnthropicJudge.
type Judge interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// AnthropicJudgeConfig configures the default Judge implementation.
type AnthropicJudgeConfig struct {
	APIKey              string
	BaseURL             string
	Model               string
	MaxTokens           int
	EnablePromptCaching *bool
	CacheTTL            string
}

// applyDefaults mirrors EvalClientConfig.ApplyDefaults in the teacher:
// it mutates the config in place and returns it for chaining.
func (c *AnthropicJudgeConfig) applyDefaults() *AnthropicJudgeConfig {
	if c.Model == "" {
		c.Model = "claude-haiku-4-5"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
	if c.EnablePromptCaching == nil {
		enabled := true
		c.EnablePromptCaching = &enabled
	}
	return c
}

// AnthropicJudge is the default Judge: a single bounded-output message
// call per requirement, issued through anthropic-sdk-go (ported from the
// teacher's EvalClient, stripped of the agentic tool-calling loop — the
// rubric judge contract is a single verdict call, not a multi-step
// agent). EnablePromptCaching and CacheTTL are stored in its config, but
// Ask sends one user message with no system block and no cache-control
// setting.
type AnthropicJudge struct {
	client anthropic.Client
	config AnthropicJudgeConfig
}

// NewAnthropicJudge builds a Judge backed by the Anthropic API.
func NewAnthropicJudge(config AnthropicJudgeConfig) *AnthropicJudge {
	config.applyDefaults()

	var opts []option.RequestOption
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicJudge{
		client: anthropic.NewClient(opts...),
		config: config,
	}
}

// Ask issues the bounded judge call and returns the raw reply text.
func (j *AnthropicJudge) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := j.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(j.config.Model),
		MaxTokens: int64(j.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("judge request failed: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("judge response contained no content blocks")
	}

	textBlock, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("judge response's first content block was not text")
	}
	return textBlock.Text, nil
}
