package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"repost/internal/artifacts"
	"repost/internal/logging"
	"repost/internal/publisher"
	"repost/internal/queue"
	"repost/internal/record"
	"repost/internal/runlock"
	"repost/internal/services/catalog"
	"repost/internal/services/llm"
	"repost/internal/services/mailer"
	"repost/internal/transcriber"
	"repost/internal/workflow"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the next playlist video through the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			lock, err := runlock.Acquire(cfg.Workflow.LockFile)
			if errors.Is(err, runlock.ErrHeld) {
				fmt.Fprintf(out, "Another run is in progress (%v); exiting.\n", err)
				if owner, ownerErr := runlock.ReadOwner(cfg.Workflow.LockFile); ownerErr == nil {
					stale := time.Duration(cfg.Workflow.LockStaleMinutes) * time.Minute
					if owner.StaleAfter(stale) {
						fmt.Fprintf(out, "Lock owner started at %s and looks stale; remove %s if the process is gone.\n",
							owner.StartedAt.Format(time.RFC3339), cfg.Workflow.LockFile)
					}
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			defer func() {
				if err := lock.Release(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "release run lock: %v\n", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			catalogClient := catalog.NewClient(catalog.Config{
				PlaylistID:     cfg.Catalog.PlaylistID,
				BaseURL:        cfg.Catalog.BaseURL,
				TokenFile:      cfg.Catalog.TokenFile,
				ClientID:       cfg.Catalog.ClientID,
				ClientSecret:   cfg.Catalog.ClientSecret,
				TimeoutSeconds: cfg.Catalog.RequestTimeout,
			})
			notifier := mailer.NewService(cfg, logger)

			manager := workflow.NewManager(cfg, store, workflow.StageSet{
				Transcriber: transcriber.New(cfg, logger),
				Locator:     artifacts.NewLocator(cfg, logger),
				Drafter:     llm.NewDrafter(cfg, logger),
				Packager:    record.NewPackager(cfg, logger),
				Publisher:   publisher.NewStage(cfg, logger),
			}, catalogClient, notifier, logger)

			if _, err := manager.Intake(ctx); err != nil {
				if !errors.Is(err, catalog.ErrEmptyPlaylist) {
					return err
				}
				fmt.Fprintln(out, "Playlist is empty; checking the ledger for unfinished items.")
			}

			item, err := manager.RunNext(ctx)
			if errors.Is(err, workflow.ErrNothingToDo) {
				fmt.Fprintln(out, "Nothing to do.")
				return nil
			}
			if err != nil {
				if item != nil {
					fmt.Fprintf(out, "Item %d (%s) failed: see the log for details.\n", item.ID, item.Title)
				}
				return err
			}

			if item.SoftSuccess {
				fmt.Fprintf(out, "Item %d (%s) submitted without confirmation; verify on the platform.\n", item.ID, item.Title)
			} else {
				fmt.Fprintf(out, "Item %d (%s) completed.\n", item.ID, item.Title)
			}
			return nil
		},
	}
}
