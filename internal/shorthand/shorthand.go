package shorthand

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/miniprog/graphql-request/types"
)

var (
	// ErrMissingOperationName is returned when nothing precedes the argument list.
	ErrMissingOperationName = errors.New("missing operation name")
	// ErrSyntax is returned when the shorthand cannot be split into a name
	// and an argument list.
	ErrSyntax = errors.New("shorthand syntax error")
	// ErrMissingVariableType is returned when a declared variable has no type.
	ErrMissingVariableType = errors.New("missing variable type")
)

var (
	argumentsPattern = regexp.MustCompile(`\(([^)]*)\)`)
	namePattern      = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
)

// ParseError describes why a single shorthand string was rejected.
type ParseError struct {
	// Query is the shorthand string as supplied by the caller.
	Query string
	// Detail names the offending part, if any.
	Detail string
	// Err is one of the package sentinels.
	Err error
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Query)
	}
	return fmt.Sprintf("%v: %s: %q", e.Err, e.Detail, e.Query)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(query string, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Query:  query,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// Variable is one declared `key:Type` pair of a shorthand string.
type Variable struct {
	Key  string
	Type string
}

// Operation is the parsed form of one shorthand string.
// It is owned by the compile call that produced it.
type Operation struct {
	Name          string
	Type          types.OperationType
	Variables     []Variable
	VariableTypes map[string]string
	Values        map[string]any
	ResponseNode  string
}

// HasVariables reports whether the operation declares any variable.
func (op *Operation) HasVariables() bool {
	return len(op.Variables) > 0
}

// Parse parses a shorthand string of the form `name(key:Type,...)`.
// The parenthesized list is optional; `name` is treated as `name()`.
//
// Examples:
//   - "viewer" -> {Name: "viewer"}
//   - "user(id:ID!)" -> {Name: "user", Variables: [{id ID!}]}
//   - "search(q:String, first:Int=10)" -> {Name: "search", Variables: [{q String} {first Int=10}]}
//
// The operation's runtime values are looked up in values by operation name
// and its response node is taken from sel.
func Parse(
	query string,
	kind types.OperationType,
	sel Selection,
	values map[string]map[string]any,
) (*Operation, error) {
	source := strings.TrimSpace(query)

	loc := argumentsPattern.FindStringSubmatchIndex(source)
	if loc == nil {
		source += types.EmptyArguments
		loc = argumentsPattern.FindStringSubmatchIndex(source)
		if loc == nil {
			return nil, newParseError(query, ErrSyntax, "no argument list")
		}
	}

	name := strings.TrimSpace(source[:loc[0]])
	if name == "" {
		return nil, &ParseError{Query: query, Err: ErrMissingOperationName}
	}
	if !namePattern.MatchString(name) {
		return nil, newParseError(query, ErrSyntax, "invalid operation name %q", name)
	}
	if rest := strings.TrimSpace(source[loc[1]:]); rest != "" {
		return nil, newParseError(query, ErrSyntax, "unexpected %q after argument list", rest)
	}

	vars, err := parseVariables(query, source[loc[2]:loc[3]])
	if err != nil {
		return nil, err
	}

	op := &Operation{
		Name:          name,
		Type:          kind,
		Variables:     vars,
		VariableTypes: make(map[string]string, len(vars)),
		Values:        values[name],
	}
	for _, v := range vars {
		op.VariableTypes[v.Key] = v.Type
	}
	if op.Values == nil {
		op.Values = map[string]any{}
	}
	if sel != nil {
		op.ResponseNode = sel.Fragment(name)
	}
	return op, nil
}

func parseVariables(query, statement string) ([]Variable, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, nil
	}
	if strings.Contains(statement, "(") {
		return nil, newParseError(query, ErrSyntax, "unbalanced argument list")
	}

	segments := strings.Split(statement, ",")
	vars := make([]Variable, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))
	for _, segment := range segments {
		key, typ, _ := strings.Cut(segment, ":")
		key = strings.TrimSpace(key)
		typ = strings.TrimSpace(typ)
		if typ == "" {
			return nil, newParseError(query, ErrMissingVariableType, "variable %q", key)
		}
		if key == "" {
			return nil, newParseError(query, ErrSyntax, "variable of type %q has no name", typ)
		}
		if _, ok := seen[key]; ok {
			return nil, newParseError(query, ErrSyntax, "variable %q declared twice", key)
		}
		seen[key] = struct{}{}
		vars = append(vars, Variable{Key: key, Type: typ})
	}
	return vars, nil
}

// ParseAll parses every shorthand string of a batch. All failures are
// reported together; errors.Is matches any of them.
func ParseAll(
	queries []string,
	kind types.OperationType,
	sel Selection,
	values map[string]map[string]any,
) ([]*Operation, error) {
	var result *multierror.Error
	ops := make([]*Operation, 0, len(queries))
	for _, q := range queries {
		op, err := Parse(q, kind, sel, values)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		ops = append(ops, op)
	}
	if result != nil {
		result.ErrorFormat = listFormat
		return nil, result
	}
	return ops, nil
}

func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d shorthand errors: %s", len(errs), strings.Join(msgs, "; "))
}
