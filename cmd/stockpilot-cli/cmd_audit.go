package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockpilotai/stockpilot/client"
)

func newAuditCmd() *cobra.Command {
	var actionID, event string
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit trail",
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := apiClient.Audit.History(context.Background(), &client.AuditQueryOptions{
				ActionID: actionID,
				Event:    event,
				Limit:    limit,
			})
			if err != nil {
				fatal("query audit", err)
			}

			if flagFmt == "table" {
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.Timestamp.Format("2006-01-02 15:04:05"), e.ActionID, e.Event, e.Actor, e.Notes,
					})
				}
				formatTable([]string{"TIMESTAMP", "ACTION", "EVENT", "ACTOR", "NOTES"}, rows)
				return
			}
			output(entries, fmt.Sprintf("%d", len(entries)))
		},
	}
	cmd.Flags().StringVar(&actionID, "action", "", "Filter by action ID")
	cmd.Flags().StringVar(&event, "event", "", "Filter by event type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to return")
	return cmd
}
