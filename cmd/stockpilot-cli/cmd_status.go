package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agent status",
		Run: func(cmd *cobra.Command, args []string) {
			status, err := apiClient.Status(context.Background())
			if err != nil {
				fatal("get status", err)
			}
			output(status, status.RestaurantID)
		},
	}
}
