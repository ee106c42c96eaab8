package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/report"
)

func providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect analysis providers",
	}

	cmd.AddCommand(providersListCmd())
	cmd.AddCommand(providersTestCmd())

	return cmd
}

func providersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Probe every provider and show which one would be selected",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selector, _, err := newSelector()
			if err != nil {
				return err
			}

			results := probeProviders(cmd.Context(), selector, cmd.ErrOrStderr())
			output := report.NewFormatter().FormatProbeResults(selector.Active(), selector.Candidates(), results)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
}

func providersTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a small analysis request to the active provider",
		Long: `Send a small analysis request to the active provider. Use --provider to
test a specific provider without probing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := newEngine(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			active := engine.ActiveProvider()
			var line string
			if engine.TestConnection(cmd.Context()) {
				line = report.FormatSuccess(fmt.Sprintf("%s answered the test request", active))
			} else {
				line = report.FormatError(fmt.Sprintf("%s did not answer the test request", active))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}
}
