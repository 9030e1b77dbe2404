package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-health/internal/api"
	"github.com/Veraticus/spice-health/internal/cli"
	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/config"
	"github.com/Veraticus/spice-health/internal/engine"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/service"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a Financial Health Score",
		Long: `Compute today's Financial Health Score and record it in the score history.

Scoring the same user again on the same day replaces that day's entry.
Use --preview to compute without recording, or --all to score every user.`,
		RunE: runScore,
	}

	cmd.Flags().StringP("user", "u", "", "User ID to score")
	cmd.Flags().Bool("all", false, "Score every user with stored data")
	cmd.Flags().Bool("preview", false, "Compute without recording history")
	cmd.Flags().Bool("debts", false, "Also show how each debt was weighed")
	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	all, _ := cmd.Flags().GetBool("all")
	preview, _ := cmd.Flags().GetBool("preview")
	showDebts, _ := cmd.Flags().GetBool("debts")
	asJSON, _ := cmd.Flags().GetBool("json")

	if all == (userID != "") {
		return fmt.Errorf("specify exactly one of --user or --all")
	}
	if all && preview {
		return fmt.Errorf("--preview cannot be combined with --all")
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if all {
		return scoreAll(cmd, eng, out)
	}

	var result health.Result
	if preview {
		result, err = eng.Preview(ctx, userID)
	} else {
		result, err = eng.Score(ctx, userID)
	}
	if errors.Is(err, common.ErrUnknownUser) {
		return common.NewUserError(fmt.Sprintf("No records for %s yet. Start with: spice profile set --user %s", userID, userID), err)
	}
	if err != nil {
		return fmt.Errorf("failed to score %s: %w", userID, err)
	}

	if asJSON {
		return printJSON(out, api.ScoreResponse{UserID: userID, Delta: result.Delta(), Result: result})
	}

	fmt.Fprintln(out, cli.RenderScoreCard(userID, result)) //nolint:forbidigo // User-facing output
	if showDebts {
		return printDebts(cmd, store, userID)
	}
	return nil
}

func scoreAll(cmd *cobra.Command, eng *engine.ScoreEngine, out io.Writer) error {
	interruptHandler := cli.NewInterruptHandler(out)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "Scoring", "spice score --all")

	userIDs, err := eng.Users(ctx)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No users to score yet")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Scoring %d users", len(userIDs)))) //nolint:forbidigo // User-facing output
	bar := progressbar.NewOptions(len(userIDs),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Scoring users...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(out); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	report, err := eng.ScoreAll(ctx, func(_ string, _ health.Result, _ error) {
		if addErr := bar.Add(1); addErr != nil {
			slog.Debug("Failed to update progress bar", "error", addErr)
		}
	})
	if interruptHandler.WasInterrupted() {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Scored %d of %d users", report.Scored, len(userIDs)))) //nolint:forbidigo // User-facing output
	failed := make([]string, 0, len(report.Failed))
	for userID := range report.Failed {
		failed = append(failed, userID)
	}
	sort.Strings(failed)
	for _, userID := range failed {
		fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", userID, report.Failed[userID]))) //nolint:forbidigo // User-facing output
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d users could not be scored", len(failed))
	}
	return nil
}

func printDebts(cmd *cobra.Command, store service.Storage, userID string) error {
	debts, err := store.GetDebts(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load debts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDebts(health.NormalizeAll(debts))) //nolint:forbidigo // User-facing output
	return nil
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scores",
		Long:  `Show the daily score history for a user, newest first.`,
		RunE:  runHistory,
	}

	cmd.Flags().StringP("user", "u", "", "User ID")
	cmd.Flags().IntP("limit", "n", 0, "Maximum entries to show (default: score.history_limit)")
	cmd.Flags().Bool("json", false, "Print the history as JSON")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	if limit <= 0 {
		limit = config.LoadServerConfig().HistoryLimit
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	records, err := eng.History(ctx, userID, limit)
	if errors.Is(err, common.ErrUnknownUser) {
		return common.NewUserError(fmt.Sprintf("No records for %s yet. Start with: spice profile set --user %s", userID, userID), err)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, api.HistoryEntries(records))
	}
	fmt.Fprintln(out, cli.RenderHistory(userID, records)) //nolint:forbidigo // User-facing output
	return nil
}
