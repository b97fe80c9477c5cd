package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wemscribe/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the pipeline journal",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := queue.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, status)
			}

			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Filename,
					string(item.Status),
					item.DetectedLanguage,
					truncate(item.ErrorMessage, 60),
					item.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Filename", "Status", "Lang", "Error", "Updated"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Only show items with this status")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool
	var failedFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed items from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			statuses := []queue.Status{queue.StatusCompleted}
			switch {
			case allFlag:
				statuses = nil
			case failedFlag:
				statuses = []queue.Status{queue.StatusFailed}
			}

			removed, err := store.Clear(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d item(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Remove every item regardless of status")
	cmd.Flags().BoolVar(&failedFlag, "failed", false, "Remove failed items instead of completed ones")
	return cmd
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
