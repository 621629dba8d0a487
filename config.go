package rubric

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"
)

// MaxTokens and MaxDepth get dedicated types purely so generateSchema
// can attach bespoke bounds to them (ported from the teacher's
// MaxTokens/MaxSteps pattern in mcp_eval_config.go).
type MaxTokens int
type MaxDepth int

// RewardStrategyConfig names a registered reward strategy tag plus its
// parameters (spec.md §6, "registries keyed by short string tags").
type RewardStrategyConfig struct {
	Tag    string             `yaml:"tag" json:"tag" jsonschema:"Reward strategy tag: sum, mean, level_weighted, level_based, completion_ratio, or progressive"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"Strategy-specific numeric parameters, e.g. base_weight/level_multiplier"`
}

// RubricRunConfig is the top-level configuration for running a rubric
// evaluation: which judge model to use, the reward strategy, and where
// to find the requirement set and scenarios on disk (spec.md §6
// "Rubric persistence").
type RubricRunConfig struct {
	JudgeModel          string               `yaml:"judge_model" json:"judge_model" jsonschema:"Anthropic model ID to use as the judge"`
	Timeout             string               `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"Timeout duration for the whole evaluate run: one deadline covers every judge call of every scenario (e.g. '30s')"`
	MaxTokens           MaxTokens            `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"Maximum tokens per judge request"`
	EnablePromptCaching *bool                `yaml:"enable_prompt_caching,omitempty" json:"enable_prompt_caching,omitempty" jsonschema:"Prompt caching flag passed to the judge config (defaults to true); judge requests carry no cache-control setting"`
	CacheTTL            string               `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty" jsonschema:"Cache time-to-live: '5m' (default) or '1h'"`
	MaxDepth            MaxDepth             `yaml:"max_depth,omitempty" json:"max_depth,omitempty" jsonschema:"Maximum layer count for adaptive mode; the evaluate command does not read it and adaptive runs use a cap of 10"`
	Mode                string               `yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"Evaluation mode: model_guided, reference_guided, exhaustive, or adaptive"`
	RewardStrategy       RewardStrategyConfig `yaml:"reward_strategy" json:"reward_strategy" jsonschema:"Reward strategy used to reduce the score table to a scalar"`
	RequirementsFile    string               `yaml:"requirements_file" json:"requirements_file" jsonschema:"Path to the <prefix>_requirements.yaml file"`
	ScenariosFile       string               `yaml:"scenarios_file,omitempty" json:"scenarios_file,omitempty" jsonschema:"Path to a scenarios YAML file"`
}

// LoadConfig loads a RubricRunConfig from a YAML or JSON file, detected
// by extension, expanding ${VAR}/${VAR:-default} environment
// references before parsing (ported from the teacher's LoadConfig in
// mcp_eval_config.go).
func LoadConfig(filePath string) (*RubricRunConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedStr, err := shell.Expand(string(data), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}
	expandedData := []byte(expandedStr)

	var config RubricRunConfig
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expandedData, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(expandedData, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file extension: %s (expected .yaml, .yml, or .json)", ext)
	}

	if config.JudgeModel == "" {
		return nil, fmt.Errorf("judge_model is required in config")
	}
	if config.RequirementsFile == "" {
		return nil, fmt.Errorf("requirements_file is required in config")
	}
	if config.RewardStrategy.Tag == "" {
		config.RewardStrategy.Tag = "sum"
	}
	if _, ok := NewRewardStrategy(config.RewardStrategy.Tag); !ok {
		return nil, fmt.Errorf("unknown reward_strategy tag %q", config.RewardStrategy.Tag)
	}

	return &config, nil
}

// generateSchema builds a jsonschema.Schema for RubricRunConfig with
// bespoke bounds on MaxTokens/MaxDepth (ported from the teacher's
// generateSchema).
func generateSchema() (*jsonschema.Schema, error) {
	customSchemas := map[reflect.Type]*jsonschema.Schema{
		reflect.TypeFor[MaxTokens](): {Type: "integer", Minimum: jsonschema.Ptr(1.0), Maximum: jsonschema.Ptr(20000.0), Default: json.RawMessage("512")},
		reflect.TypeFor[MaxDepth]():  {Type: "integer", Minimum: jsonschema.Ptr(0.0), Maximum: jsonschema.Ptr(100.0), Default: json.RawMessage("10")},
	}

	opts := &jsonschema.ForOptions{TypeSchemas: customSchemas}

	schema, err := jsonschema.For[RubricRunConfig](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON schema: %w", err)
	}

	schema.Title = "Rubric Run Configuration"
	schema.Description = "Configuration schema for running a multi-step rubric evaluation"
	schema.Schema = "https://json-schema.org/draft/2020-12/schema"

	return schema, nil
}

// SchemaForRubricConfig renders the RubricRunConfig JSON schema as an
// indented JSON string, used by the `schema` CLI command.
func SchemaForRubricConfig() (string, error) {
	schema, err := generateSchema()
	if err != nil {
		return "", err
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal final schema: %w", err)
	}
	return string(schemaJSON), nil
}

// ConfigValidationIssue is one schema-validation failure location.
type ConfigValidationIssue struct {
	Path    string
	Message string
}

// ConfigValidationResult is ValidateConfigFile's return value.
type ConfigValidationResult struct {
	Valid  bool
	Errors []ConfigValidationIssue
}

// ValidateConfigFile validates a configuration file against the
// generated JSON schema without constructing a Rubric (ported from the
// teacher's ValidateConfigFile).
func ValidateConfigFile(filePath string) (*ConfigValidationResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var jsonData []byte
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		var yamlData any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		jsonData, err = json.Marshal(yamlData)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
		}
	case ".json":
		jsonData = data
	default:
		return nil, fmt.Errorf("unsupported file extension: %s (expected .yaml, .yml, or .json)", ext)
	}

	schema, err := generateSchema()
	if err != nil {
		return nil, err
	}

	var configData any
	if err = json.Unmarshal(jsonData, &configData); err != nil {
		return nil, fmt.Errorf("failed to parse config as JSON: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}

	validationErr := resolved.Validate(configData)

	result := &ConfigValidationResult{Valid: validationErr == nil}
	if validationErr != nil {
		result.Errors = []ConfigValidationIssue{{Path: "", Message: validationErr.Error()}}
	}

	return result, nil
}
