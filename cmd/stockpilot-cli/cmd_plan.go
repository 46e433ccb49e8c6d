package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockpilotai/stockpilot/client"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run planning cycles",
	}
	cmd.AddCommand(planGenerateCmd())
	cmd.AddCommand(planCommandCmd())
	return cmd
}

// loadAlerts reads a JSON array of alerts from a file, or stdin for "-".
func loadAlerts(path string) ([]client.Alert, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var alerts []client.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func planGenerateCmd() *cobra.Command {
	var alertsPath, restaurant string
	var horizon int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an action plan from alerts",
		Run: func(cmd *cobra.Command, args []string) {
			alerts, err := loadAlerts(alertsPath)
			if err != nil {
				fatal("load alerts", err)
			}

			plan, autoRun, err := apiClient.Plan.Generate(context.Background(), client.PlanRequest{
				Alerts:       alerts,
				RestaurantID: restaurant,
				HorizonHours: horizon,
			})
			if err != nil {
				fatal("generate plan", err)
			}

			out := map[string]any{"plan": plan}
			if autoRun != nil {
				out["auto_run"] = autoRun
			}
			output(out, plan.Status)
		},
	}
	cmd.Flags().StringVar(&alertsPath, "alerts", "-", "Alerts JSON file (- for stdin)")
	cmd.Flags().StringVar(&restaurant, "restaurant", "", "Restaurant ID")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Planning horizon in hours")
	return cmd
}

func planCommandCmd() *cobra.Command {
	var alertsPath string
	cmd := &cobra.Command{
		Use:   "command <text>",
		Short: "Resolve an operator command into proposed actions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			alerts, err := loadAlerts(alertsPath)
			if err != nil {
				fatal("load alerts", err)
			}

			plan, err := apiClient.Plan.Command(context.Background(), client.PlanRequest{
				Alerts:  alerts,
				Command: args[0],
			})
			if err != nil {
				fatal("run command", err)
			}
			output(plan, plan.Status)
		},
	}
	cmd.Flags().StringVar(&alertsPath, "alerts", "-", "Alerts JSON file (- for stdin)")
	return cmd
}
