package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockpilotai/stockpilot/client"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Run and inspect the alert pipeline",
	}
	cmd.AddCommand(alertsRunCmd())
	cmd.AddCommand(alertsHistoryCmd())
	cmd.AddCommand(alertsResetCmd())
	return cmd
}

func alertsRunCmd() *cobra.Command {
	var predsPath string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the alert pipeline",
		Long:  "Runs the alert pipeline. Without --predictions the server reads its configured classifier output file.",
		Run: func(cmd *cobra.Command, args []string) {
			req := client.RunRequest{Threshold: threshold}

			if predsPath != "" {
				var data []byte
				var err error
				if predsPath == "-" {
					data, err = io.ReadAll(os.Stdin)
				} else {
					data, err = os.ReadFile(predsPath)
				}
				if err != nil {
					fatal("load predictions", err)
				}
				if err := json.Unmarshal(data, &req.Predictions); err != nil {
					fatal("parse predictions", err)
				}
			}

			res, err := apiClient.Alerts.Run(context.Background(), req)
			if err != nil {
				fatal("run alerts", err)
			}
			output(res, fmt.Sprintf("%d eligible", len(res.Eligible)))
		},
	}
	cmd.Flags().StringVar(&predsPath, "predictions", "", "Predictions JSON file (- for stdin)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Confidence threshold override")
	return cmd
}

func alertsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the per-item cooldown history",
		Run: func(cmd *cobra.Command, args []string) {
			history, err := apiClient.Alerts.History(context.Background())
			if err != nil {
				fatal("alert history", err)
			}
			output(history, fmt.Sprintf("%d", len(history)))
		},
	}
}

func alertsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the cooldown history",
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Alerts.Reset(context.Background()); err != nil {
				fatal("reset history", err)
			}
			fmt.Println("reset")
		},
	}
}
