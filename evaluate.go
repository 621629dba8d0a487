package rubric

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// EvaluationMode selects one of the four traversal strategies (spec.md
// §4.4).
type EvaluationMode int

const (
	ModelGuided EvaluationMode = iota
	ReferenceGuided
	Exhaustive
	Adaptive
)

func (m EvaluationMode) String() string {
	switch m {
	case ModelGuided:
		return "model_guided"
	case ReferenceGuided:
		return "reference_guided"
	case Exhaustive:
		return "exhaustive"
	case Adaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// TerminalCondition classifies how an adaptive walk ended (spec.md §3
// "Evaluation Result").
type TerminalCondition int

const (
	Completed TerminalCondition = iota
	NoValidPath
	ErrorCondition
	MaxDepthReached
)

func (c TerminalCondition) String() string {
	switch c {
	case Completed:
		return "completed"
	case NoValidPath:
		return "no_valid_path"
	case ErrorCondition:
		return "error"
	case MaxDepthReached:
		return "max_depth_reached"
	default:
		return "unknown"
	}
}

// EvaluationResult is adaptive mode's richer return value (spec.md §3).
// The other three modes return a bare ScoreTable.
type EvaluationResult struct {
	State                ScoreTable
	TerminalCondition     TerminalCondition
	CompletedRequirements map[string]bool
	TotalRequirements     int
}

// CompletionRatio is |completed| / total, 0 when total is 0 (P4).
func (r EvaluationResult) CompletionRatio() float64 {
	return completionRatio(len(r.CompletedRequirements), r.TotalRequirements)
}

const defaultMaxDepth = 10

// frontierResult is one requirement's judge outcome within a layer's
// concurrent fan-out.
type frontierResult struct {
	name  string
	entry ScoreEntry
	err   error
}

// evaluateFrontier runs one requirement's judge call per name in
// parallel and joins before returning (spec.md §5 "within a layer").
// Results are keyed by requirement name; callers range over their
// frontier and look each name up.
func (r *Rubric) evaluateFrontier(ctx context.Context, names []string, scenario Scenario) map[string]frontierResult {
	results := make(map[string]frontierResult, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		node, ok := r.node(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(name string, node *RewardNode) {
			defer wg.Done()
			answer, err := node.Evaluate(ctx, scenario)
			res := frontierResult{name: name}
			if err != nil {
				res.err = err
			} else {
				reasoning, _ := answer.Reasoning()
				res.entry = ScoreEntry{Answer: answer.Value(), Reasoning: reasoning}
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, node)
	}

	wg.Wait()
	return results
}

// nextFrontier computes, for a set of evaluated (name, answer) pairs,
// the union of dependencies[answer] over every non-terminal
// requirement whose answer is a declared key (spec.md §4.4
// "Model-guided"). Deduplicated, sorted for determinism.
func (r *Rubric) nextFrontier(evaluated map[string]float64) []string {
	seen := make(map[string]bool)
	var out []string
	for name, answer := range evaluated {
		req, ok := r.requirement(name)
		if !ok || req.Terminal() {
			continue
		}
		names, ok := req.Dependencies[answer]
		if !ok {
			continue
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}

// EvaluateModelGuided walks the rubric from layer 0, advancing the
// frontier by the model's own judged answers (spec.md §4.4
// "Model-guided"). A judge failure aborts the evaluation with the
// partial table attached.
func (r *Rubric) EvaluateModelGuided(ctx context.Context, scenario Scenario) (ScoreTable, error) {
	table := make(ScoreTable)
	frontier := r.rootNames()
	level := 0

	for len(frontier) > 0 {
		results := r.evaluateFrontier(ctx, frontier, scenario)
		evaluated := make(map[string]float64, len(results))
		for _, name := range frontier {
			res := results[name]
			if res.err != nil {
				return table, fmt.Errorf("model-guided evaluation failed at requirement %q: %w", name, res.err)
			}
			table.set(level, name, res.entry)
			evaluated[name] = res.entry.Answer
		}
		frontier = r.nextFrontier(evaluated)
		level++
	}

	return table, nil
}

// EvaluateReferenceGuided walks the rubric like model-guided, but the
// frontier advances using the scenario's reference answers while the
// recorded score is still the model's judged answer. A requirement in
// the current frontier with no reference answer is dropped — not
// evaluated, not scored (spec.md §4.4 "Reference-guided"; open
// question decision documented in SPEC_FULL.md §4).
func (r *Rubric) EvaluateReferenceGuided(ctx context.Context, scenario Scenario) (ScoreTable, error) {
	table := make(ScoreTable)
	refAnswers := scenario.flattenAnswers()
	frontier := filterHasReference(r.rootNames(), refAnswers)
	level := 0

	for len(frontier) > 0 {
		results := r.evaluateFrontier(ctx, frontier, scenario)
		refForAdvance := make(map[string]float64, len(frontier))
		for _, name := range frontier {
			res := results[name]
			if res.err != nil {
				return table, fmt.Errorf("reference-guided evaluation failed at requirement %q: %w", name, res.err)
			}
			table.set(level, name, res.entry)
			refForAdvance[name] = refAnswers[name]
		}
		frontier = filterHasReference(r.nextFrontier(refForAdvance), refAnswers)
		level++
	}

	return table, nil
}

func filterHasReference(names []string, refAnswers map[string]float64) []string {
	if len(names) == 0 {
		return nil
	}
	var out []string
	for _, name := range names {
		if _, ok := refAnswers[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// EvaluateExhaustive fans out a single concurrent batch over every
// requirement in the rubric, ignoring dependencies entirely (spec.md
// §4.4 "Exhaustive", P2).
func (r *Rubric) EvaluateExhaustive(ctx context.Context, scenario Scenario) (ScoreTable, error) {
	table := make(ScoreTable)
	names := r.Names()
	results := r.evaluateFrontier(ctx, names, scenario)
	for _, name := range names {
		res := results[name]
		if res.err != nil {
			return table, fmt.Errorf("exhaustive evaluation failed at requirement %q: %w", name, res.err)
		}
		table.set(0, name, res.entry)
	}
	return table, nil
}

// EvaluateAdaptive is model-guided evaluation with a depth cap and
// per-requirement failure isolation: a judge error is recorded as
// score 0.0 with the error in its reasoning and the walk continues
// (spec.md §4.4 "Adaptive", §9 "Exception-as-control-flow").
func (r *Rubric) EvaluateAdaptive(ctx context.Context, scenario Scenario, maxDepth int) EvaluationResult {
	if maxDepth <= 0 && maxDepth != 0 {
		maxDepth = defaultMaxDepth
	}
	if maxDepth == 0 {
		return EvaluationResult{
			State:                 make(ScoreTable),
			TerminalCondition:     Completed,
			CompletedRequirements: map[string]bool{},
			TotalRequirements:     r.Len(),
		}
	}

	table := make(ScoreTable)
	completed := make(map[string]bool)
	frontier := r.rootNames()
	level := 0

	for len(frontier) > 0 && level < maxDepth {
		results := r.evaluateFrontier(ctx, frontier, scenario)
		evaluated := make(map[string]float64, len(frontier))
		for _, name := range frontier {
			res := results[name]
			entry := res.entry
			if res.err != nil {
				entry = ScoreEntry{Answer: 0.0, Reasoning: fmt.Sprintf("judge error: %s", res.err)}
			}
			table.set(level, name, entry)
			completed[name] = true
			evaluated[name] = entry.Answer
		}
		next := r.nextFrontier(evaluated)

		if len(next) == 0 {
			// i == 0 (the root layer) emptying naturally is
			// "completed"; any later iteration emptying is
			// "no_valid_path" (spec.md §9, asymmetric by design).
			condition := Completed
			if level > 0 {
				condition = NoValidPath
			}
			return EvaluationResult{
				State:                 table,
				TerminalCondition:     condition,
				CompletedRequirements: completed,
				TotalRequirements:     r.Len(),
			}
		}
		frontier = next
		level++
	}

	condition := Completed
	if len(frontier) > 0 {
		condition = MaxDepthReached
	}
	return EvaluationResult{
		State:                 table,
		TerminalCondition:     condition,
		CompletedRequirements: completed,
		TotalRequirements:     r.Len(),
	}
}

// Evaluate dispatches to the mode-specific walk. Adaptive mode's richer
// EvaluationResult is wrapped so all four modes share one entry point.
func (r *Rubric) Evaluate(ctx context.Context, scenario Scenario, mode EvaluationMode) (EvaluationResult, error) {
	if err := r.Validate(scenario, mode); err != nil {
		return EvaluationResult{}, err
	}

	switch mode {
	case ModelGuided:
		table, err := r.EvaluateModelGuided(ctx, scenario)
		return resultFromTable(table, r.Len()), err
	case ReferenceGuided:
		table, err := r.EvaluateReferenceGuided(ctx, scenario)
		return resultFromTable(table, r.Len()), err
	case Exhaustive:
		table, err := r.EvaluateExhaustive(ctx, scenario)
		return resultFromTable(table, r.Len()), err
	case Adaptive:
		return r.EvaluateAdaptive(ctx, scenario, defaultMaxDepth), nil
	default:
		return EvaluationResult{}, &ConfigError{Reason: fmt.Sprintf("unknown evaluation mode %v", mode)}
	}
}

func resultFromTable(table ScoreTable, total int) EvaluationResult {
	completed := make(map[string]bool)
	for _, byName := range table {
		for name := range byName {
			completed[name] = true
		}
	}
	return EvaluationResult{
		State:                 table,
		TerminalCondition:     Completed,
		CompletedRequirements: completed,
		TotalRequirements:     total,
	}
}

// RolloutRecord is score_rollout's return record (spec.md §4.4 "Scoring
// a rollout").
type RolloutRecord struct {
	Reward            float64
	Mode              EvaluationMode
	RewardStrategy    string
	State             ScoreTable
	TerminalCondition TerminalCondition
	TotalRequirements int
}

// ScoreRollout assembles a transient scenario from a prompt/completion
// pair and a reference-answer map, evaluates it under mode, and reduces
// the result through the rubric's configured reward strategy.
func (r *Rubric) ScoreRollout(ctx context.Context, prompt, completion string, referenceAnswers map[string]Answer, mode EvaluationMode) (RolloutRecord, error) {
	scenario := Scenario{
		Prompt:     prompt,
		Completion: completion,
		Answers:    referenceAnswers,
	}

	result, err := r.Evaluate(ctx, scenario, mode)
	if err != nil {
		return RolloutRecord{}, err
	}

	reward := r.rewardStrategy.Reward(result.State, result.TotalRequirements)
	return RolloutRecord{
		Reward:            reward,
		Mode:              mode,
		RewardStrategy:    r.rewardStrategy.Name(),
		State:             result.State,
		TerminalCondition: result.TerminalCondition,
		TotalRequirements: result.TotalRequirements,
	}, nil
}
