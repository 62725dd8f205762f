package graph

import (
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// selectsIntrospection reports whether query selects __schema or __type anywhere,
// fragments included. __typename is ordinary field metadata and does not count.
// Documents that fail to parse report false; execution rejects them anyway.
func selectsIntrospection(query string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			if introspects(d.SelectionSet) {
				return true
			}
		case *ast.FragmentDefinition:
			if introspects(d.SelectionSet) {
				return true
			}
		}
	}
	return false
}

func introspects(set *ast.SelectionSet) bool {
	if set == nil {
		return false
	}
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name != nil && (s.Name.Value == "__schema" || s.Name.Value == "__type") {
				return true
			}
			if introspects(s.SelectionSet) {
				return true
			}
		case *ast.InlineFragment:
			if introspects(s.SelectionSet) {
				return true
			}
		}
	}
	return false
}
