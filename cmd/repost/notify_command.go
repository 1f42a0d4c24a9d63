package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"repost/internal/logging"
	"repost/internal/services/mailer"
)

func newNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	notifyCmd.AddCommand(newNotifyTestCommand(cmdCtx))
	return notifyCmd
}

func newNotifyTestCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Mailer.Host) == "" {
				fmt.Fprintln(out, "SMTP is not configured; nothing to send")
				return nil
			}
			service := mailer.NewService(cfg, logging.NewNop())
			if err := service.SendTest(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(out, "Test notification sent to %s\n", strings.Join(cfg.Mailer.To, ", "))
			return nil
		},
	}
}
