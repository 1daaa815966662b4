package document

import "github.com/miniprog/graphql-request/internal/shorthand"

// Scope flattens the runtime values of a batch into one map keyed by
// scoped variable name. On a collision the later operation wins.
func Scope(ops []*shorthand.Operation) map[string]any {
	scoped := make(map[string]any)
	for _, op := range ops {
		for key, value := range op.Values {
			scoped[ScopedName(op.Name, key)] = value
		}
	}
	return scoped
}

// ScopeByName is Scope for a batch known only by its operation names,
// as is the case for a document served from the statement cache.
func ScopeByName(names []string, values map[string]map[string]any) map[string]any {
	scoped := make(map[string]any)
	for _, name := range names {
		for key, value := range values[name] {
			scoped[ScopedName(name, key)] = value
		}
	}
	return scoped
}
