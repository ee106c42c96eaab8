package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the insight engine over HTTP",
		Long: `Start the JSON HTTP API. Providers are probed once at startup; the active
provider can be changed at runtime with PUT /api/provider.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Float64("rate-limit", 2, "Analysis requests per second per client (0 disables)")
	cmd.Flags().Int("rate-burst", 5, "Burst size for the analysis rate limit")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.rate_limit", cmd.Flags().Lookup("rate-limit"))
	_ = viper.BindPFlag("server.rate_burst", cmd.Flags().Lookup("rate-burst"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	engine, err := newEngine(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	srv, err := server.New(server.Config{
		Engine:    engine,
		Store:     store,
		Logger:    slog.Default(),
		RateLimit: viper.GetFloat64("server.rate_limit"),
		RateBurst: viper.GetInt("server.rate_burst"),
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx, viper.GetString("server.addr"))
}
