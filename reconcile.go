package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"streamdraw/config"
	"streamdraw/database"
	"streamdraw/internal/participation"

	"github.com/spf13/cobra"
)

var reconcileOlderThan time.Duration

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Resolve stale pending payments against the gateway",
	Long: `Looks up pending payments older than --older-than and asks the gateway
for their status, exactly as a callback would. Payments the gateway still
reports as pending are left alone.

Examples:
  streamdraw reconcile
  streamdraw reconcile --older-than 2h`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().DurationVar(&reconcileOlderThan, "older-than", 0, "minimum payment age (default STALE_PAYMENT_AFTER)")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	engine, err := newEngine()
	if err != nil {
		return err
	}

	olderThan := reconcileOlderThan
	if olderThan <= 0 {
		olderThan = config.STALE_PAYMENT_AFTER
	}

	counts, err := engine.ReconcileStale(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("Reconciled %d payments\n", total)
	for _, o := range []participation.Outcome{
		participation.OutcomeSuccess,
		participation.OutcomeAlreadyProcessed,
		participation.OutcomeStreamClosed,
		participation.OutcomeVerificationFailed,
		participation.OutcomeRecordMissing,
	} {
		if counts[o] > 0 {
			fmt.Printf("  %-22s %d\n", o, counts[o])
		}
	}
	return nil
}
