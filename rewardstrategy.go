package rubric

// ScoreEntry is one requirement's recorded judge result within a
// ScoreTable: the scalar answer used for frontier advancement plus its
// reasoning text (spec.md §3 "Evaluation Result").
type ScoreEntry struct {
	Answer    float64
	Reasoning string
}

// ScoreTable is the level-indexed score map every evaluation mode
// produces: layer index -> requirement name -> its recorded result.
// Level keys are ints internally and only stringified at the
// serialization boundary (spec.md §9 "Integer-vs-string level keys").
type ScoreTable map[int]map[string]ScoreEntry

func (t ScoreTable) set(level int, name string, entry ScoreEntry) {
	if t[level] == nil {
		t[level] = make(map[string]ScoreEntry)
	}
	t[level][name] = entry
}

// deepestLevel returns the highest level index present in the table,
// or -1 if the table is empty.
func (t ScoreTable) deepestLevel() int {
	deepest := -1
	for level := range t {
		if level > deepest {
			deepest = level
		}
	}
	return deepest
}

// flatten returns every recorded entry across all levels, and the
// total count of evaluated entries (N_eval in spec.md §4.5).
func (t ScoreTable) flatten() ([]ScoreEntry, int) {
	var entries []ScoreEntry
	for _, byName := range t {
		for _, e := range byName {
			entries = append(entries, e)
		}
	}
	return entries, len(entries)
}

// RewardStrategy reduces a level-indexed score table to a scalar reward
// (spec.md §4.5). Callers holding an EvaluationResult pass its State and
// TotalRequirements.
type RewardStrategy interface {
	Name() string
	Reward(table ScoreTable, totalRequirements int) float64
}

// SumRewardStrategy: Σ_i S_i, where S_i is the sum of scores at layer i.
type SumRewardStrategy struct{}

func (SumRewardStrategy) Name() string { return "sum" }

func (SumRewardStrategy) Reward(table ScoreTable, _ int) float64 {
	var total float64
	for _, byName := range table {
		for _, e := range byName {
			total += e.Answer
		}
	}
	return total
}

// MeanRewardStrategy: (Σ_i S_i) / N_eval, 0 if N_eval == 0.
type MeanRewardStrategy struct{}

func (MeanRewardStrategy) Name() string { return "mean" }

func (MeanRewardStrategy) Reward(table ScoreTable, _ int) float64 {
	entries, n := table.flatten()
	if n == 0 {
		return 0
	}
	var total float64
	for _, e := range entries {
		total += e.Answer
	}
	return total / float64(n)
}

// LevelWeightedRewardStrategy: Σ_i (b + i·m) · S_i.
type LevelWeightedRewardStrategy struct {
	BaseWeight      float64
	LevelMultiplier float64
}

func (LevelWeightedRewardStrategy) Name() string { return "level_weighted" }

func (s LevelWeightedRewardStrategy) Reward(table ScoreTable, _ int) float64 {
	var total float64
	for level, byName := range table {
		weight := s.BaseWeight + float64(level)*s.LevelMultiplier
		for _, e := range byName {
			total += weight * e.Answer
		}
	}
	return total
}

// LevelBasedRewardStrategy: L·α + r·β, where L is the deepest level
// index present and r is the completion ratio (completed/total).
type LevelBasedRewardStrategy struct {
	MaxLevelBonus   float64
	CompletionBonus float64
}

func (LevelBasedRewardStrategy) Name() string { return "level_based" }

func (s LevelBasedRewardStrategy) Reward(table ScoreTable, totalRequirements int) float64 {
	deepest := table.deepestLevel()
	if deepest < 0 {
		deepest = 0
	}
	_, n := table.flatten()
	ratio := completionRatio(n, totalRequirements)
	return float64(deepest)*s.MaxLevelBonus + ratio*s.CompletionBonus
}

// CompletionRatioRewardStrategy: r·w_r + mean_score·w_q.
type CompletionRatioRewardStrategy struct {
	RatioWeight   float64
	QualityWeight float64
}

func (CompletionRatioRewardStrategy) Name() string { return "completion_ratio" }

func (s CompletionRatioRewardStrategy) Reward(table ScoreTable, totalRequirements int) float64 {
	entries, n := table.flatten()
	ratio := completionRatio(n, totalRequirements)

	var meanScore float64
	if n > 0 {
		var total float64
		for _, e := range entries {
			total += e.Answer
		}
		meanScore = total / float64(n)
	}
	return ratio*s.RatioWeight + meanScore*s.QualityWeight
}

// ProgressiveRewardStrategy: Σ_i b · g^i · S_i.
type ProgressiveRewardStrategy struct {
	BaseReward   float64
	GrowthFactor float64
}

func (ProgressiveRewardStrategy) Name() string { return "progressive" }

func (s ProgressiveRewardStrategy) Reward(table ScoreTable, _ int) float64 {
	var total float64
	for level, byName := range table {
		weight := s.BaseReward * pow(s.GrowthFactor, level)
		for _, e := range byName {
			total += weight * e.Answer
		}
	}
	return total
}

func completionRatio(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// NewRewardStrategy constructs a registered reward strategy by its
// short tag with default parameters (spec.md §6, "registries keyed by
// short string tags"). Unknown tags return false.
func NewRewardStrategy(tag string) (RewardStrategy, bool) {
	switch tag {
	case "sum":
		return SumRewardStrategy{}, true
	case "mean":
		return MeanRewardStrategy{}, true
	case "level_weighted":
		return LevelWeightedRewardStrategy{BaseWeight: 1, LevelMultiplier: 1}, true
	case "level_based":
		return LevelBasedRewardStrategy{MaxLevelBonus: 1, CompletionBonus: 1}, true
	case "completion_ratio":
		return CompletionRatioRewardStrategy{RatioWeight: 1, QualityWeight: 1}, true
	case "progressive":
		return ProgressiveRewardStrategy{BaseReward: 1, GrowthFactor: 2}, true
	default:
		return nil, false
	}
}
