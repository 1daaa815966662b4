package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miniprog/graphql-request"
	"github.com/miniprog/graphql-request/internal/document"
	"github.com/miniprog/graphql-request/internal/log"
)

type compileOptions struct {
	requestFlags
	check bool
}

func newCompileCmd(root *rootOptions) *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile [shorthand...]",
		Short: "Print the document and variables a batch compiles to",
		Example: `  gqlc compile 'user(id:ID!)' --node 'id name' --vars '{"user":{"id":"1"}}'
  gqlc compile -m 'logout' 'login(user:String!,pass:String!)'
  gqlc compile -f request.yaml --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, req, err := opts.build(cmd, args)
			if err != nil {
				return err
			}
			ctx := log.WithLogger(cmd.Context(), newLogger(root.verbosity))
			comp, err := graphql.NewCompiler(graphql.WithStatementCache(nil)).Compile(ctx, kind, req)
			if err != nil {
				return err
			}

			text := comp.Document.Text
			if opts.check {
				doc, err := document.Check(text)
				if err != nil {
					return fmt.Errorf("compiled document does not parse: %w", err)
				}
				text = document.Format(doc)
			}

			vars, err := json.MarshalIndent(comp.Variables, "", "  ")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, text)
			_, _ = fmt.Fprintln(out, string(vars))
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.check, "check", false, "parse the compiled document and pretty-print it")
	return cmd
}
