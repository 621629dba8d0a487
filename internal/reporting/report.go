package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	rubric "github.com/jacobphillips99/go-rubric"
	"github.com/jacobphillips99/go-rubric/internal/help"
)

// ScenarioResult pairs one scenario with its rollout record (or the
// error that aborted it) — the unit this package renders.
type ScenarioResult struct {
	Scenario rubric.Scenario
	Record   rubric.RolloutRecord
	Error    error
}

// PrintStyledReport renders a colorized summary of a scenario batch,
// with an optional per-requirement detailed breakdown (ported from the
// teacher's PrintStyledReport, generalized from five-dimension LLM
// grades to the rubric's level-indexed score table).
func PrintStyledReport(results []ScenarioResult, verbose bool) error {
	styles := help.DefaultStyles()

	var content strings.Builder
	content.WriteString(h1(styles, "Rubric Evaluation Summary"))
	content.WriteString(captureSummaryTable(results, styles))
	content.WriteString(captureOverallStats(results, styles))

	if verbose {
		content.WriteString(captureDetailedBreakdown(results, styles))
	}

	marginStyle := lipgloss.NewStyle().MarginTop(1).MarginBottom(1)
	fmt.Println(marginStyle.Render(content.String()))

	return nil
}

func h1(styles help.Styles, text string) string {
	return styles.Heading.Render("# "+text) + "\n\n"
}

func h2(styles help.Styles, text string) string {
	return styles.Heading.Render("## "+text) + "\n\n"
}

func h3(styles help.Styles, text string) string {
	return styles.Heading.Render("### "+text) + "\n\n"
}

func captureSummaryTable(results []ScenarioResult, styles help.Styles) string {
	var output strings.Builder

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, buildResultRow(result, styles))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Heading).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(styles.Heading.GetForeground()).Align(lipgloss.Left).Padding(0, 2)
			}
			return lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 2)
		}).
		Headers("Scenario", "Status", "Mode", "Reward", "Strategy", "Completed/Total").
		Rows(rows...)

	output.WriteString(t.String() + "\n\n")
	return output.String()
}

func buildResultRow(result ScenarioResult, styles help.Styles) []string {
	name := result.Scenario.Name
	if len(name) > 25 {
		name = name[:22] + "..."
	}

	if result.Error != nil {
		return []string{name, styles.Error.Render("ERROR"), "-", "-", "-", "-"}
	}

	record := result.Record
	status := styles.Success.Render(record.TerminalCondition.String())
	if record.TerminalCondition == rubric.NoValidPath {
		status = styles.Error.Render(record.TerminalCondition.String())
	}

	completed := completionCount(record.State)
	completedStr := fmt.Sprintf("%d/%d", completed, record.TotalRequirements)

	return []string{
		name,
		status,
		record.Mode.String(),
		fmt.Sprintf("%.2f", record.Reward),
		record.RewardStrategy,
		completedStr,
	}
}

func completionCount(table rubric.ScoreTable) int {
	seen := make(map[string]bool)
	for _, byName := range table {
		for name := range byName {
			seen[name] = true
		}
	}
	return len(seen)
}

func captureOverallStats(results []ScenarioResult, styles help.Styles) string {
	var output strings.Builder

	total := len(results)
	errorCount, completedCount, noPathCount := 0, 0, 0
	var rewardSum float64

	for _, result := range results {
		if result.Error != nil {
			errorCount++
			continue
		}
		rewardSum += result.Record.Reward
		switch result.Record.TerminalCondition {
		case rubric.NoValidPath:
			noPathCount++
		default:
			completedCount++
		}
	}

	output.WriteString(h2(styles, "Overall Statistics"))
	output.WriteString(fmt.Sprintf("Total Scenarios: %d\n", total))

	if completedCount > 0 {
		output.WriteString(fmt.Sprintf("  %s\n", styles.Success.Render(fmt.Sprintf("✓ Completed: %d (%.0f%%)", completedCount, pct(completedCount, total)))))
	}
	if noPathCount > 0 {
		output.WriteString(fmt.Sprintf("  %s\n", styles.Error.Render(fmt.Sprintf("✗ No valid path: %d (%.0f%%)", noPathCount, pct(noPathCount, total)))))
	}
	if errorCount > 0 {
		output.WriteString(fmt.Sprintf("  %s\n", styles.Error.Render(fmt.Sprintf("⚠ Error: %d (%.0f%%)", errorCount, pct(errorCount, total)))))
	}
	output.WriteString("\n")

	if total-errorCount > 0 {
		avgReward := rewardSum / float64(total-errorCount)
		output.WriteString(fmt.Sprintf("Average Reward:     %.2f\n\n", avgReward))
	}

	return output.String()
}

func pct(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func captureDetailedBreakdown(results []ScenarioResult, styles help.Styles) string {
	var output strings.Builder
	output.WriteString(h2(styles, "Detailed Breakdown"))

	for i, result := range results {
		output.WriteString(captureScenarioDetail(result, styles))
		if i < len(results)-1 {
			output.WriteString(strings.Repeat("─", 80) + "\n\n")
		}
	}

	return output.String()
}

func captureScenarioDetail(result ScenarioResult, styles help.Styles) string {
	var output strings.Builder

	output.WriteString(h3(styles, result.Scenario.Name))
	if result.Scenario.Description != "" {
		output.WriteString(styles.Muted.Render(result.Scenario.Description) + "\n\n")
	}

	if result.Error != nil {
		output.WriteString(fmt.Sprintf("Status: %s\n", styles.Error.Render("ERROR")))
		output.WriteString(fmt.Sprintf("Error: %s\n\n", result.Error.Error()))
		return output.String()
	}

	record := result.Record
	output.WriteString(fmt.Sprintf("Mode: %s | Reward strategy: %s | Reward: %.2f | Terminal: %s\n\n",
		record.Mode, record.RewardStrategy, record.Reward, record.TerminalCondition))

	levels := sortedLevelIndices(record.State)
	for _, level := range levels {
		output.WriteString(fmt.Sprintf("Level %d:\n", level))
		names := sortedNames(record.State[level])
		for _, name := range names {
			entry := record.State[level][name]
			bar := makeScoreBar(entry.Answer)
			output.WriteString(fmt.Sprintf("  %-28s %5.2f  %s\n", name+":", entry.Answer, bar))
			if entry.Reasoning != "" {
				output.WriteString(fmt.Sprintf("    %s\n", styles.Muted.Render(entry.Reasoning)))
			}
		}
	}
	output.WriteString("\n")

	return output.String()
}

func sortedLevelIndices(table rubric.ScoreTable) []int {
	levels := make([]int, 0, len(table))
	for level := range table {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

func sortedNames(byName map[string]rubric.ScoreEntry) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// makeScoreBar renders a five-segment bar scaled to a [0, 1] answer
// value; values outside that range (e.g. a continuous format with
// different bounds) clamp to the nearest end.
func makeScoreBar(answer float64) string {
	filled := "█"
	empty := "░"
	segments := int(answer * 5)
	if segments < 0 {
		segments = 0
	}
	if segments > 5 {
		segments = 5
	}

	var bar strings.Builder
	for i := 1; i <= 5; i++ {
		if i <= segments {
			bar.WriteString(filled)
		} else {
			bar.WriteString(empty)
		}
	}
	return bar.String()
}
