package types

// OperationType is the GraphQL operation keyword a compiled document starts with.
type OperationType string

// Shorthand and document constants used throughout the codebase.
const (
	// Query is the operation keyword for read operations.
	Query OperationType = "query"

	// Mutation is the operation keyword for write operations.
	Mutation OperationType = "mutation"

	// ScopeSeparator joins an operation name and a variable key into a
	// scoped variable name, and joins operation names into the document
	// name ("a" + "x" -> "a_x").
	ScopeSeparator = "_"

	// EmptyArguments is appended to a shorthand string that declares no
	// parenthesized argument list.
	EmptyArguments = "()"

	// VariablePrefix marks a variable reference in a GraphQL document.
	VariablePrefix = "$"
)

// Valid reports whether t is an operation type the compiler can emit.
func (t OperationType) Valid() bool {
	return t == Query || t == Mutation
}

func (t OperationType) String() string {
	return string(t)
}
