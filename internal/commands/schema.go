package commands

import (
	"fmt"

	rubric "github.com/jacobphillips99/go-rubric"
)

// SchemaCmd handles the schema command.
type SchemaCmd struct{}

// Run executes the schema command.
func (s *SchemaCmd) Run(globals *Globals) error {
	schema, err := rubric.SchemaForRubricConfig()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)
	return nil
}
