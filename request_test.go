package graphql_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/miniprog/graphql-request"
)

func TestRequestFromMap(t *testing.T) {
	yes := true
	tests := []struct {
		name     string
		data     map[string]any
		wantKind graphql.OperationType
		want     *graphql.Request
	}{
		{
			name:     "string query with node",
			data:     map[string]any{"query": "a(x:Int)", "responseNode": "id"},
			wantKind: graphql.Query,
			want:     &graphql.Request{Query: []string{"a(x:Int)"}, Selection: graphql.Node("id")},
		},
		{
			name: "list mutation with nodes and variables",
			data: map[string]any{
				"mutation":     []any{"a(x:Int)", "b"},
				"responseNode": map[string]any{"a": "id"},
				"variables":    map[string]any{"a": map[string]any{"x": 1}},
				"custom":       true,
			},
			wantKind: graphql.Mutation,
			want: &graphql.Request{
				Query:     []string{"a(x:Int)", "b"},
				Selection: graphql.Nodes{"a": "id"},
				Variables: map[string]map[string]any{"a": {"x": 1}},
				Custom:    &yes,
			},
		},
		{
			name:     "typed string list",
			data:     map[string]any{"query": []string{"a", "b"}},
			wantKind: graphql.Query,
			want:     &graphql.Request{Query: []string{"a", "b"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, req, err := graphql.RequestFromMap(tc.data)
			if err != nil {
				t.Fatal(err)
			}
			if kind != tc.wantKind {
				t.Errorf("got kind: %v, want: %v", kind, tc.wantKind)
			}
			if !reflect.DeepEqual(req, tc.want) {
				t.Errorf("got request: %+v, want: %+v", req, tc.want)
			}
		})
	}
}

func TestRequestFromMap_invalid(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]any
		wantShape bool
	}{
		{"no query", map[string]any{}, true},
		{"empty string", map[string]any{"query": ""}, true},
		{"empty list", map[string]any{"query": []any{}}, true},
		{"number", map[string]any{"query": 42}, true},
		{"list with a number", map[string]any{"query": []any{"a", 1}}, true},
		{"bad node", map[string]any{"query": "a", "responseNode": 1}, false},
		{"bad node entry", map[string]any{"query": "a", "responseNode": map[string]any{"a": 1}}, false},
		{"bad variables", map[string]any{"query": "a", "variables": map[string]any{"a": 1}}, false},
		{"bad custom", map[string]any{"query": "a", "custom": "yes"}, false},
		{"flat variables", map[string]any{
			"query":     "a(value1:String!,value2:Int)",
			"variables": map[string]any{"value1": "x", "value2": 1},
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := graphql.RequestFromMap(tc.data)
			if err == nil {
				t.Fatal("got error: nil, want: non-nil")
			}
			if got := errors.Is(err, graphql.ErrInvalidQueryShape); got != tc.wantShape {
				t.Errorf("got errors.Is(ErrInvalidQueryShape) = %v for %v", got, err)
			}
		})
	}
}

// Variables are keyed by operation name even for a single operation.
func TestRequestFromMap_flatVariables(t *testing.T) {
	_, _, err := graphql.RequestFromMap(map[string]any{
		"query":     "a(value1:String!)",
		"variables": map[string]any{"value1": "x"},
	})
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
	if got, want := err.Error(), `variables "value1": expected a map, got string`; got != want {
		t.Errorf("got error: %q, want: %q", got, want)
	}
}
