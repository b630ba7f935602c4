package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := apiClient.Health(ctx); err != nil {
				return fmt.Errorf("server is unhealthy: %w", err)
			}

			fmt.Println("Server is healthy.")
			return nil
		},
	}
}
