package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/miniprog/graphql-request"
	"github.com/miniprog/graphql-request/config"
)

type sendOptions struct {
	requestFlags
	endpoint string
}

func newSendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send [shorthand...]",
		Short: "Compile a batch and send it to a GraphQL endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if opts.endpoint != "" {
				cfg.Endpoint = opts.endpoint
			}
			if cfg.Endpoint == "" {
				return fmt.Errorf("no endpoint: set --endpoint, endpoint in the config file or GQLC_ENDPOINT")
			}
			if root.verbosity > cfg.Log.Verbosity {
				cfg.Log.Verbosity = root.verbosity
			}

			kind, req, err := opts.build(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cache, err := cfg.StatementCache(ctx)
			if err != nil {
				return err
			}
			compiler := graphql.NewCompiler(
				graphql.WithStatementCache(cache),
				graphql.WithCustom(cfg.Custom),
			)
			client := graphql.NewClient(cfg.Endpoint, http.DefaultClient).
				WithRequester(graphql.NewRequester(http.DefaultClient, cfg.RequestConfig())).
				WithCompiler(compiler).
				WithLogger(newLogger(cfg.Log.Verbosity))

			res, err := client.Do(ctx, kind, req)
			if res != nil && len(res.Data) > 0 {
				var pretty any
				if jerr := json.Unmarshal(res.Data, &pretty); jerr == nil {
					b, _ := json.MarshalIndent(pretty, "", "  ")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				}
			}
			return err
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "GraphQL endpoint, overrides the config")
	return cmd
}
