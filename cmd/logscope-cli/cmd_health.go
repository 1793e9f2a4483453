package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var ready bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server liveness, or readiness with --ready",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			if ready {
				resp, err := apiClient.Ready(ctx)
				if err != nil {
					fatal("readiness", err)
				}
				output(resp, []string{resp.Status}, func() {
					keys := make([]string, 0, len(resp.Checks))
					for k := range resp.Checks {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					rows := make([][]string, len(keys))
					for i, k := range keys {
						rows[i] = []string{k, resp.Checks[k]}
					}
					formatTable([]string{"CHECK", "STATUS"}, rows)
				})
				return
			}

			resp, err := apiClient.Health(ctx)
			if err != nil {
				fatal("health", err)
			}
			output(resp, []string{resp.Status}, func() {
				fmt.Printf("status:   %s\nversion:  %s\nschema:   %d\ndatabase: %s\nuptime:   %.0fs\n",
					resp.Status, resp.Version, resp.SchemaVersion, resp.Database, resp.UptimeSeconds)
			})
		},
	}
	cmd.Flags().BoolVar(&ready, "ready", false, "Query the readiness endpoint instead")
	return cmd
}
