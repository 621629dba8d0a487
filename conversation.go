package rubric

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Role distinguishes user/assistant turns in the dialogue the
// conversation driver inspects (spec.md §4.6).
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the dialogue driving a conversation.
type Message struct {
	Role    Role
	Content string
}

// ConversationState is the mutable per-conversation record the driver
// threads through NextConversationStep (spec.md §3 "Conversation
// State").
type ConversationState struct {
	LevelIdx   int
	ActiveReqs []string

	// answersGT is the scenario's reference answer map, both flattened
	// (for frontier advancement) and raw (for the Background reasoning
	// lookup — open question decision 4, SPEC_FULL.md §4).
	answersGT    map[string]float64
	rawAnswersGT map[string]Answer

	Finished bool

	revealedInfo     map[string]bool
	revealedInfoData map[string]map[string]string

	Progression []string
}

// NewConversationState initializes a fresh conversation at layer 0 from
// a scenario's reference answers and revealed-info map.
func NewConversationState(scenario Scenario) ConversationState {
	return ConversationState{
		LevelIdx:         0,
		ActiveReqs:       nil,
		answersGT:        scenario.flattenAnswers(),
		rawAnswersGT:     scenario.Answers,
		Finished:         false,
		revealedInfo:     make(map[string]bool),
		revealedInfoData: scenario.RevealedInfo,
	}
}

// pyFloatString renders a float the way Python's str(float) does for the
// whole-number-or-simple-fraction values an answer takes (e.g. 1.0 ->
// "1.0", not Go's bare "1"). revealed_info keys and the revealed-set
// entries derived from them must match this convention (spec.md §4.6,
// §8 seed test 5: revealed_info = {scene_safety: {"1.0": ...}}).
func pyFloatString(value float64) string {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func revealedKey(name string, value float64) string {
	return fmt.Sprintf("%s_%s", name, pyFloatString(value))
}

// NextConversationStep runs one reference-guided layer advancement per
// exchange (spec.md §4.6). messages must be non-empty; the first
// message's content is the initial prompt and the last assistant
// message is the response being judged.
func (r *Rubric) NextConversationStep(ctx context.Context, messages []Message, state ConversationState) (string, ConversationState, error) {
	if state.Finished {
		return "", state, nil
	}
	if len(messages) == 0 {
		return "", state, &ValidationError{Reason: "conversation requires at least one message"}
	}

	prompt := messages[0].Content
	lastAssistant := lastAssistantContent(messages)

	answers := make(map[string]Answer, len(state.answersGT))
	for name, v := range state.answersGT {
		answers[name] = NewScalarAnswer(v)
	}
	scenario := Scenario{Prompt: prompt, Completion: lastAssistant, Answers: answers}

	table, err := r.EvaluateReferenceGuided(ctx, scenario)
	if err != nil {
		return "", state, err
	}

	layer, ok := table[state.LevelIdx]
	if !ok {
		layer = map[string]ScoreEntry{}
	}

	evaluated := make(map[string]float64, len(layer))
	for name, entry := range layer {
		evaluated[name] = entry.Answer
	}
	nextFrontier := r.nextFrontier(evaluated)

	var revealedLines []string
	for _, name := range sortedKeys(layer) {
		score := layer[name].Answer
		key := revealedKey(name, score)
		if state.revealedInfo[key] {
			continue
		}
		text, ok := state.revealedInfoData[name][pyFloatString(score)]
		if !ok || text == "" {
			continue
		}
		revealedLines = append(revealedLines, text)
		state.revealedInfo[key] = true
	}

	var sb strings.Builder
	for _, line := range revealedLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(revealedLines) > 0 {
		sb.WriteString("\n")
	}

	if len(nextFrontier) == 0 {
		sb.WriteString("No further information is available. You may conclude.")
		state.Finished = true
		state.Progression = append(state.Progression, fmt.Sprintf("level %d: frontier emptied", state.LevelIdx))
		return sb.String(), state, nil
	}

	for _, name := range nextFrontier {
		req, ok := r.requirement(name)
		if !ok {
			continue
		}
		if reasoning, ok := backgroundReasoning(state.rawAnswersGT, name); ok && reasoning != "" {
			sb.WriteString(fmt.Sprintf("Background (%s): %s\n", name, reasoning))
		}
		sb.WriteString(fmt.Sprintf("Question (%s): %s\n", name, req.Question))
	}

	state.LevelIdx++
	state.ActiveReqs = nextFrontier
	state.Progression = append(state.Progression, fmt.Sprintf("level %d: frontier %v", state.LevelIdx, nextFrontier))

	return strings.TrimRight(sb.String(), "\n"), state, nil
}

// backgroundReasoning implements open question decision 4
// (SPEC_FULL.md §4): the reasoning line is read from the unflattened
// reference-answer map, not the flattened scalar map used for frontier
// advancement, so a reasoning string attached to a reference answer is
// actually reachable.
func backgroundReasoning(rawAnswers map[string]Answer, name string) (string, bool) {
	answer, ok := rawAnswers[name]
	if !ok {
		return "", false
	}
	return answer.Reasoning()
}

func lastAssistantContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

func sortedKeys(m map[string]ScoreEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
