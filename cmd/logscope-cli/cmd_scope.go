package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newScopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scope",
		Short: "Show which tenant and actors your session can see",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			scope, err := apiClient.Logs.Scope(context.Background())
			if err != nil {
				fatal("resolve scope", err)
			}
			output(scope, []string{scope.Kind}, func() {
				fmt.Printf("kind:   %s\n", scope.Kind)
				fmt.Printf("tenant: %s\n", deref(scope.TenantID))
				if len(scope.Actors) > 0 {
					fmt.Printf("actors: %s\n", strings.Join(scope.Actors, ", "))
				}
			})
		},
	}
}
