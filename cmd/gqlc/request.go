package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/miniprog/graphql-request"
)

// requestFlags describe a request either inline or through a file.
type requestFlags struct {
	file     string
	mutation bool
	node     string
	nodes    map[string]string
	vars     string
	custom   bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "YAML or JSON request file")
	fs.BoolVarP(&f.mutation, "mutation", "m", false, "compile a mutation instead of a query")
	fs.StringVar(&f.node, "node", "", "response node applied to every operation")
	fs.StringToStringVar(&f.nodes, "nodes", nil, "response node per operation, e.g. a=id,b=name")
	fs.StringVar(&f.vars, "vars", "", `variables keyed by operation name, e.g. '{"a":{"x":1}}'`)
	fs.BoolVar(&f.custom, "custom", false, "send the query strings verbatim")
	cmd.MarkFlagsMutuallyExclusive("node", "nodes")
}

// build returns the request described by the flags and args. Flags
// override the matching entries of a request file.
func (f *requestFlags) build(cmd *cobra.Command, args []string) (graphql.OperationType, *graphql.Request, error) {
	data := map[string]any{}
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return "", nil, err
		}
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return "", nil, fmt.Errorf("decoding %s: %w", f.file, err)
		}
	}

	if len(args) > 0 {
		delete(data, "query")
		delete(data, "mutation")
		queries := make([]any, len(args))
		for i, a := range args {
			queries[i] = a
		}
		data["query"] = queries
	}
	if f.mutation {
		if q, ok := data["query"]; ok {
			data["mutation"] = q
			delete(data, "query")
		}
	}

	switch {
	case cmd.Flags().Changed("node"):
		data["responseNode"] = f.node
	case len(f.nodes) > 0:
		nodes := make(map[string]any, len(f.nodes))
		for k, v := range f.nodes {
			nodes[k] = v
		}
		data["responseNode"] = nodes
	}

	if f.vars != "" {
		var vars map[string]any
		if err := yaml.Unmarshal([]byte(f.vars), &vars); err != nil {
			return "", nil, fmt.Errorf("decoding --vars: %w", err)
		}
		data["variables"] = vars
	}
	if cmd.Flags().Changed("custom") {
		data["custom"] = f.custom
	}

	return graphql.RequestFromMap(data)
}
