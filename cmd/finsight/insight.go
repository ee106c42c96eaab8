package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/report"
)

func insightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight [snapshot.json]",
		Short: "Compute an insight report for a financial snapshot",
		Long: `Compute an insight report from a snapshot JSON file, or from an OFX/QFX
statement with --ofx.

Examples:
  # Analyze a snapshot file
  finsight insight march.json --question "Can I afford a holiday?"

  # Import a bank statement and rate your mood
  finsight insight --ofx ~/Downloads/checking.qfx --mood 7 --tags happy,excited

  # Skip provider probing
  finsight insight march.json --provider fallback --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInsight,
	}

	cmd.Flags().StringP("question", "q", "", "Question to ask about the snapshot")
	cmd.Flags().String("ofx", "", "Build the snapshot from an OFX/QFX statement")
	cmd.Flags().Int("mood", 5, "Mood rating (1-10) for imported statements")
	cmd.Flags().StringSlice("tags", nil, "Emotional tags for imported statements")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().Bool("no-save", false, "Do not store the report in the history")

	return cmd
}

func runInsight(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question, _ := cmd.Flags().GetString("question")
	ofxPath, _ := cmd.Flags().GetString("ofx")
	mood, _ := cmd.Flags().GetInt("mood")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	asJSON, _ := cmd.Flags().GetBool("json")
	noSave, _ := cmd.Flags().GetBool("no-save")

	var (
		snapshot model.Snapshot
		err      error
	)
	switch {
	case ofxPath != "" && len(args) > 0:
		return common.NewUserError("pass either a snapshot file or --ofx, not both", nil)
	case ofxPath != "":
		snapshot, err = importSnapshot(ctx, ofxPath, mood, tags)
	case len(args) == 1:
		snapshot, err = loadSnapshot(args[0])
	default:
		return common.NewUserError("a snapshot file or --ofx statement is required", nil)
	}
	if err != nil {
		return err
	}

	engine, err := newEngine(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result := engine.ComputeInsight(ctx, snapshot, question)

	if !noSave {
		id, err := saveReport(ctx, model.NewStoredReport(model.ReportKindInsight, question, snapshot, result))
		if err != nil {
			slog.Warn("Failed to save report", "error", err)
		} else {
			slog.Debug("Saved report", "id", id)
		}
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().Format(result))
	return err
}
