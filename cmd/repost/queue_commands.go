package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"repost/internal/queue"
)

func newQueueCommand(cmdCtx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the run ledger",
	}
	queueCmd.AddCommand(newQueueListCommand(cmdCtx))
	queueCmd.AddCommand(newQueueStatusCommand(cmdCtx))
	queueCmd.AddCommand(newQueueRetryCommand(cmdCtx))
	queueCmd.AddCommand(newQueueClearCommand(cmdCtx))
	return queueCmd
}

func withStore(cmdCtx *commandContext, fn func(*queue.Store) error) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newQueueListCommand(cmdCtx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *queue.Store) error {
				var statuses []queue.Status
				if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
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
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Ledger is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					detail := item.ProgressMessage
					if item.Status == queue.StatusFailed && item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						string(item.Status),
						truncate(item.Title, 40),
						item.VideoID,
						truncate(detail, 50),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Title", "Video", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show items with this status")
	return cmd
}

func newQueueStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show aggregated ledger counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *queue.Store) error {
				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:      %d\n", summary.Total)
				fmt.Fprintf(out, "Pending:    %d\n", summary.Pending)
				fmt.Fprintf(out, "Processing: %d\n", summary.Processing)
				fmt.Fprintf(out, "Completed:  %d\n", summary.Completed)
				fmt.Fprintf(out, "Failed:     %d\n", summary.Failed)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id]",
		Short: "Reset failed items to their last checkpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *queue.Store) error {
				var id int64
				if len(args) == 1 {
					parsed, err := strconv.ParseInt(args[0], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid item id %q", args[0])
					}
					id = parsed
				}
				count, err := store.RetryFailed(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d item(s) for retry\n", count)
				return nil
			})
		},
	}
}

func newQueueClearCommand(cmdCtx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed items from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *queue.Store) error {
				var (
					count int64
					err   error
					label string
				)
				switch {
				case clearAll:
					count, err = store.Clear(cmd.Context())
					label = "item(s)"
				case clearFailed:
					count, err = store.ClearFailed(cmd.Context())
					label = "failed item(s)"
				default:
					count, err = store.ClearCompleted(cmd.Context())
					label = "completed item(s)"
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", count, label)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed items instead of completed ones")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every item regardless of status")
	return cmd
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
