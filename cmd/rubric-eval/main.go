// Command rubric-eval evaluates scenarios against a rubric DAG using
// an external LLM judge and prints a styled reward report.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	rubric "github.com/jacobphillips99/go-rubric"
	"github.com/jacobphillips99/go-rubric/internal/commands"
	"github.com/jacobphillips99/go-rubric/internal/help"
)

// CLI is the root command tree.
type CLI struct {
	commands.Globals

	Evaluate commands.EvaluateCmd `cmd:"" help:"Run scenarios through a rubric and print a reward report"`
	Validate commands.ValidateCmd `cmd:"" help:"Validate a rubric run configuration file against its schema"`
	Schema   commands.SchemaCmd   `cmd:"" help:"Print the JSON schema for a rubric run configuration file"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var cli CLI
	styles := help.DefaultStyles()

	parser, err := kong.New(&cli,
		kong.Name("rubric-eval"),
		kong.Description("Evaluate free-form responses against a rubric DAG using an LLM judge."),
		kong.UsageOnError(),
		kong.Help(help.Printer(styles)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render(err.Error()))
		return 1
	}

	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render(err.Error()))
		return exitCodeFor(err)
	}

	return 0
}

// exitCodeFor maps the error taxonomy in errors.go to the CLI's exit
// codes (spec.md §6: "0 success, 1 user/config error, 2 internal
// error"). Configuration and validation errors are the caller's to
// fix; anything else (judge/network failure, I/O) is internal.
func exitCodeFor(err error) int {
	var configErr *rubric.ConfigError
	var validationErr *rubric.ValidationError
	if errors.As(err, &configErr) || errors.As(err, &validationErr) {
		return 1
	}
	return 2
}
