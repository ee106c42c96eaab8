package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/insight"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/report"
)

func whatifCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whatif snapshot.json",
		Short: "Simulate changes to a snapshot and compare the outcome",
		Long: `Apply overrides to a snapshot and compare the simulated report with the
baseline. Overridden collections replace the original ones entirely.

Examples:
  # Replace variable expenses with the ones in cuts.json
  finsight whatif march.json --overrides cuts.json

  # What if I felt calmer?
  finsight whatif march.json --mood 4`,
		Args: cobra.ExactArgs(1),
		RunE: runWhatIf,
	}

	cmd.Flags().String("overrides", "", "JSON file with the snapshot fields to replace")
	cmd.Flags().Int("mood", 0, "Override the mood rating (1-10)")
	cmd.Flags().Bool("json", false, "Print the comparison as JSON")
	cmd.Flags().Bool("no-save", false, "Do not store the simulated report in the history")

	return cmd
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	overridesPath, _ := cmd.Flags().GetString("overrides")
	asJSON, _ := cmd.Flags().GetBool("json")
	noSave, _ := cmd.Flags().GetBool("no-save")

	base, err := loadSnapshot(args[0])
	if err != nil {
		return err
	}

	var overrides model.Overrides
	if overridesPath != "" {
		if overrides, err = loadOverrides(overridesPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("mood") {
		mood, _ := cmd.Flags().GetInt("mood")
		overrides.Mood = &mood
	}

	simulated := base.Apply(overrides)
	if err := simulated.Validate(); err != nil {
		return common.NewUserError("overrides produce an invalid snapshot", err)
	}

	engine, err := newEngine(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result := engine.Compare(ctx, base, overrides)

	if !noSave {
		stored := model.NewStoredReport(model.ReportKindWhatIf, insight.SimulationQuestion, simulated, result.Simulated)
		if _, err := saveReport(ctx, stored); err != nil {
			slog.Warn("Failed to save simulation", "error", err)
		}
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatComparison(result))
	return err
}
