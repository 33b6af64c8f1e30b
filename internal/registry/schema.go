package registry

import (
	_ "embed"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

// document is a fixed query sent to the registry
type document struct {
	// Operation labels logs and metrics
	Operation string
	// Root is the top-level field whose edges the response must contain
	Root string
	// Description is the failure message shown to users
	Description string
	Query       string
	// Variables lists the variables the query declares
	Variables []string
}

// LoadSchema parses the embedded registry schema subset
func LoadSchema() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
	if err != nil {
		return nil, fmt.Errorf("load registry schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks that doc is a valid operation against schema,
// selects doc.Root, and declares exactly doc.Variables.
func validateDocument(schema *ast.Schema, doc document) error {
	parsed, errs := gqlparser.LoadQuery(schema, doc.Query)
	if len(errs) > 0 {
		return fmt.Errorf("%s query: %w", doc.Operation, errs)
	}
	if len(parsed.Operations) != 1 {
		return fmt.Errorf("%s query: expected one operation, got %d", doc.Operation, len(parsed.Operations))
	}
	op := parsed.Operations[0]

	var selectsRoot bool
	for _, sel := range op.SelectionSet {
		if field, ok := sel.(*ast.Field); ok && field.Name == doc.Root {
			selectsRoot = true
		}
	}
	if !selectsRoot {
		return fmt.Errorf("%s query: does not select %s", doc.Operation, doc.Root)
	}

	if len(op.VariableDefinitions) != len(doc.Variables) {
		return fmt.Errorf("%s query: declares %d variables, expected %d", doc.Operation, len(op.VariableDefinitions), len(doc.Variables))
	}
	for _, name := range doc.Variables {
		if op.VariableDefinitions.ForName(name) == nil {
			return fmt.Errorf("%s query: missing variable $%s", doc.Operation, name)
		}
	}
	return nil
}
