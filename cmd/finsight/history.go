package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/report"
	"github.com/Veraticus/finsight/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved reports",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyDeleteCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			reports, err := store.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatHistory(reports))
			return err
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of reports to show")

	return cmd
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			stored, err := store.GetReport(cmd.Context(), args[0])
			if err != nil {
				return notFoundAsUserError(args[0], err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stored)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().Format(stored.Report))
			return err
		},
	}

	cmd.Flags().Bool("json", false, "Print the stored report as JSON")

	return cmd
}

func historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.DeleteReport(cmd.Context(), args[0]); err != nil {
				return notFoundAsUserError(args[0], err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.FormatSuccess("Deleted report "+args[0]))
			return err
		},
	}
}

func notFoundAsUserError(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no report with id %s", id), err)
	}
	return err
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}
