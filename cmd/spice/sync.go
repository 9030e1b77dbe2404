package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-health/internal/cli"
	"github.com/Veraticus/spice-health/internal/config"
	"github.com/Veraticus/spice-health/internal/plaid"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull balances and transactions from Plaid",
		Long: `Fetch account balances and recent transactions from Plaid and store them
for a user. Transactions already stored are skipped.

Credentials come from plaid.* in the config file or the PLAID_CLIENT_ID,
PLAID_SECRET, PLAID_ACCESS_TOKEN and PLAID_ENV environment variables.`,
		RunE: runSync,
	}

	cmd.Flags().StringP("user", "u", "", "User ID the bank data belongs to")
	cmd.Flags().Int("days", 90, "How many days of transactions to fetch")
	cmd.Flags().Bool("score", false, "Record a score after syncing")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	days, _ := cmd.Flags().GetInt("days")
	andScore, _ := cmd.Flags().GetBool("score")
	if days <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	plaidCfg, err := config.LoadPlaidConfig()
	if err != nil {
		return err
	}
	client, err := plaid.NewClient(plaidCfg)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	now := time.Now()
	result, err := plaid.Sync(ctx, client, store, userID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Synced %d accounts and %d transactions", result.Accounts, result.Transactions))) //nolint:forbidigo // User-facing output

	if !andScore {
		return nil
	}
	eng, err := newEngine(store)
	if err != nil {
		return err
	}
	scored, err := eng.Score(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to score %s: %w", userID, err)
	}
	fmt.Fprintln(out, cli.RenderScoreCard(userID, scored)) //nolint:forbidigo // User-facing output
	return nil
}
