package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage the action queue",
	}
	cmd.AddCommand(actionListCmd())
	cmd.AddCommand(actionGetCmd())
	cmd.AddCommand(actionApproveCmd())
	cmd.AddCommand(actionRejectCmd())
	cmd.AddCommand(actionExecuteCmd())
	cmd.AddCommand(actionRollbackCmd())
	cmd.AddCommand(actionAutoCmd())
	return cmd
}

func actionListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		Run: func(cmd *cobra.Command, args []string) {
			actions, err := apiClient.Actions.List(context.Background(), status)
			if err != nil {
				fatal("list actions", err)
			}

			if flagFmt == "table" {
				rows := make([][]string, 0, len(actions))
				for _, a := range actions {
					rows = append(rows, []string{
						a.ID, a.Type, a.OwnerRole, a.RiskLevel, a.Status,
					})
				}
				formatTable([]string{"ID", "TYPE", "OWNER", "RISK", "STATUS"}, rows)
				return
			}
			output(actions, fmt.Sprintf("%d", len(actions)))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by lifecycle status")
	return cmd
}

func actionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get an action by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := apiClient.Actions.Get(context.Background(), args[0])
			if err != nil {
				fatal("get action", err)
			}
			output(a, a.ID)
		},
	}
}

func actionApproveCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a proposed action",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := apiClient.Actions.Approve(context.Background(), args[0], actor)
			if err != nil {
				fatal("approve action", err)
			}
			output(a, a.ID)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator")
	return cmd
}

func actionRejectCmd() *cobra.Command {
	var actor, reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a proposed action",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := apiClient.Actions.Reject(context.Background(), args[0], actor, reason)
			if err != nil {
				fatal("reject action", err)
			}
			output(a, a.ID)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	return cmd
}

func actionExecuteCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "execute <id>",
		Short: "Execute an approved action",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, res, err := apiClient.Actions.Execute(context.Background(), args[0], actor)
			if err != nil {
				fatal("execute action", err)
			}
			output(map[string]any{"action": a, "result": res}, a.ID)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator")
	return cmd
}

func actionRollbackCmd() *cobra.Command {
	var actor, reason string
	cmd := &cobra.Command{
		Use:   "rollback <id>",
		Short: "Roll back an executing or executed action",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := apiClient.Actions.Rollback(context.Background(), args[0], actor, reason)
			if err != nil {
				fatal("rollback action", err)
			}
			output(a, a.ID)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator")
	cmd.Flags().StringVar(&reason, "reason", "", "Rollback reason")
	return cmd
}

func actionAutoCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Auto-approve and execute all eligible proposed actions",
		Run: func(cmd *cobra.Command, args []string) {
			res, err := apiClient.Actions.Auto(context.Background(), actor)
			if err != nil {
				fatal("auto run", err)
			}
			output(res, res.Summary)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator")
	return cmd
}
