package rubric

import "fmt"

// ConfigError is raised at rubric construction time: unknown dependency
// target, an answer/dependency-key mismatch, a cycle in the requirement
// graph, or a judge prompt template missing a required slot. Fatal.
type ConfigError struct {
	Requirement string
	Reason      string
}

func (e *ConfigError) Error() string {
	if e.Requirement == "" {
		return fmt.Sprintf("rubric config error: %s", e.Reason)
	}
	return fmt.Sprintf("rubric config error for requirement %q: %s", e.Requirement, e.Reason)
}

// ValidationError is raised before any judge call: an unknown
// requirement name in a scenario's answers, a scalar answer outside the
// declared domain, or reference-guided mode with an empty answers map.
type ValidationError struct {
	Requirement string
	Reason      string
}

func (e *ValidationError) Error() string {
	if e.Requirement == "" {
		return fmt.Sprintf("scenario validation error: %s", e.Reason)
	}
	return fmt.Sprintf("scenario validation error for requirement %q: %s", e.Requirement, e.Reason)
}

// JudgeError wraps a failure during a judge call: network failure,
// timeout, HTTP error, JSON parse failure, or a domain-violating answer.
type JudgeError struct {
	Requirement string
	Err         error
}

func (e *JudgeError) Error() string {
	return fmt.Sprintf("judge error for requirement %q: %s", e.Requirement, e.Err)
}

func (e *JudgeError) Unwrap() error {
	return e.Err
}
