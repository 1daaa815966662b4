package graphql

import (
	"fmt"

	"github.com/miniprog/graphql-request/internal/document"
	"github.com/miniprog/graphql-request/internal/shorthand"
	"github.com/miniprog/graphql-request/types"
)

type (
	// OperationType is "query" or "mutation".
	OperationType = types.OperationType
	// Selection supplies the response-node fragment of each operation.
	Selection = shorthand.Selection
	// Node applies one fragment to every operation of a batch.
	Node = shorthand.Node
	// Nodes looks fragments up by operation name.
	Nodes = shorthand.Nodes
	// Operation is one parsed shorthand string.
	Operation = shorthand.Operation
	// Variable is one declared key:Type pair.
	Variable = shorthand.Variable
	// Document is a compiled, batched GraphQL document.
	Document = document.Document
)

const (
	Query    = types.Query
	Mutation = types.Mutation
)

// Request is a batch of shorthand operations of one type.
type Request struct {
	// Query holds the shorthand strings, in batch order.
	Query []string
	// Selection is the response node of each operation. Nil means none.
	Selection Selection
	// Variables maps an operation name to its runtime values.
	Variables map[string]map[string]any
	// Custom, when set, overrides the compiler's bypass default for this
	// request: the query strings are sent verbatim.
	Custom *bool
}

// NewRequest returns a request for the given shorthand strings.
func NewRequest(queries ...string) *Request {
	return &Request{Query: queries}
}

// WithSelection sets the response nodes and returns r.
func (r *Request) WithSelection(sel Selection) *Request {
	r.Selection = sel
	return r
}

// WithVariables sets the values of one operation and returns r.
func (r *Request) WithVariables(operationName string, values map[string]any) *Request {
	if r.Variables == nil {
		r.Variables = make(map[string]map[string]any)
	}
	r.Variables[operationName] = values
	return r
}

// WithCustom sets the per-request bypass flag and returns r.
func (r *Request) WithCustom(custom bool) *Request {
	r.Custom = &custom
	return r
}

// RequestFromMap decodes a loosely typed request, as read from JSON or YAML:
//
//	query | mutation: string | [string]
//	responseNode:     string | {operationName: string}
//	variables:        {operationName: {key: value}}
//	custom:           bool
//
// A "mutation" entry makes the request a mutation.
func RequestFromMap(data map[string]any) (OperationType, *Request, error) {
	kind := Query
	raw, ok := data["query"]
	if m, found := data["mutation"]; found {
		kind = Mutation
		raw, ok = m, true
	}
	if !ok {
		return "", nil, ErrInvalidQueryShape
	}
	queries, err := queryList(raw)
	if err != nil {
		return "", nil, err
	}

	req := &Request{Query: queries}

	switch node := data["responseNode"].(type) {
	case nil:
	case string:
		req.Selection = Node(node)
	case map[string]any:
		nodes := make(Nodes, len(node))
		for name, v := range node {
			s, ok := v.(string)
			if !ok {
				return "", nil, fmt.Errorf("responseNode %q: expected a string, got %T", name, v)
			}
			nodes[name] = s
		}
		req.Selection = nodes
	case map[string]string:
		req.Selection = Nodes(node)
	default:
		return "", nil, fmt.Errorf("responseNode: expected a string or a map, got %T", node)
	}

	switch vars := data["variables"].(type) {
	case nil:
	case map[string]any:
		req.Variables = make(map[string]map[string]any, len(vars))
		for name, v := range vars {
			values, ok := v.(map[string]any)
			if !ok {
				return "", nil, fmt.Errorf("variables %q: expected a map, got %T", name, v)
			}
			req.Variables[name] = values
		}
	case map[string]map[string]any:
		req.Variables = vars
	default:
		return "", nil, fmt.Errorf("variables: expected a map, got %T", vars)
	}

	switch custom := data["custom"].(type) {
	case nil:
	case bool:
		req.Custom = &custom
	default:
		return "", nil, fmt.Errorf("custom: expected a bool, got %T", custom)
	}

	return kind, req, nil
}

func queryList(raw any) ([]string, error) {
	switch q := raw.(type) {
	case string:
		if q == "" {
			return nil, ErrInvalidQueryShape
		}
		return []string{q}, nil
	case []string:
		if len(q) == 0 {
			return nil, ErrInvalidQueryShape
		}
		return q, nil
	case []any:
		if len(q) == 0 {
			return nil, ErrInvalidQueryShape
		}
		queries := make([]string, len(q))
		for i, item := range q {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T", ErrInvalidQueryShape, i, item)
			}
			queries[i] = s
		}
		return queries, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidQueryShape, raw)
	}
}
