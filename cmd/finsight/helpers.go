package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/config"
	"github.com/Veraticus/finsight/internal/insight"
	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/ofx"
	"github.com/Veraticus/finsight/internal/provider"
	"github.com/Veraticus/finsight/internal/storage"
)

// initStorage opens the report history with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildCandidates creates the external candidates in priority order. Hosted
// providers without credentials stay in the list unconfigured.
func buildCandidates(cfg config.Providers) ([]provider.Candidate, error) {
	local, err := llm.NewClient(cfg.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to create local provider client: %w", err)
	}
	candidates := []provider.Candidate{{Name: model.ProviderLocal, Client: local}}

	hostedA := provider.Candidate{Name: model.ProviderHostedA}
	if cfg.HostedAConfigured() {
		if hostedA.Client, err = llm.NewClient(cfg.HostedA); err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", model.ProviderHostedA, err)
		}
	}

	hostedB := provider.Candidate{Name: model.ProviderHostedB}
	if cfg.HostedBConfigured() {
		if hostedB.Client, err = llm.NewClient(cfg.HostedB); err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", model.ProviderHostedB, err)
		}
	}

	return append(candidates, hostedA, hostedB), nil
}

// newSelector loads provider configuration and builds an unprobed selector.
func newSelector() (*provider.Selector, config.Providers, error) {
	cfg, err := config.LoadProvidersConfig()
	if err != nil {
		return nil, config.Providers{}, err
	}

	candidates, err := buildCandidates(cfg)
	if err != nil {
		return nil, config.Providers{}, err
	}

	selector := provider.NewSelector(candidates, provider.Options{
		Logger:       slog.Default(),
		ProbeTimeout: cfg.ProbeTimeout,
	})
	return selector, cfg, nil
}

// newEngine builds the insight engine. The provider named by --provider is
// used as is; otherwise the candidates are probed.
func newEngine(ctx context.Context, progress io.Writer) (*insight.Engine, error) {
	selector, cfg, err := newSelector()
	if err != nil {
		return nil, err
	}

	if name := viper.GetString("providers.active"); name != "" {
		parsed, err := model.ParseProviderName(name)
		if err != nil {
			return nil, common.NewUserError("invalid --provider", err)
		}
		if err := selector.Switch(parsed); err != nil {
			return nil, err
		}
	} else {
		probeProviders(ctx, selector, progress)
	}

	engine, err := insight.NewEngine(insight.Deps{
		Selector:       selector,
		Logger:         slog.Default(),
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// probeProviders runs provider selection with a progress bar on w.
func probeProviders(ctx context.Context, selector *provider.Selector, w io.Writer) []provider.ProbeResult {
	bar := progressbar.NewOptions(len(selector.Candidates()),
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Probing providers...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
	)

	results := selector.InitializeWithProgress(ctx, func(result provider.ProbeResult) {
		bar.Describe(fmt.Sprintf("[cyan][bold]Probed %s[reset]", result.Name))
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})

	if err := bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	return results
}

// loadSnapshot reads and validates a snapshot JSON file.
func loadSnapshot(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.Snapshot{}, common.NewUserError("snapshot file is not valid JSON", err)
	}
	if err := snapshot.Validate(); err != nil {
		return model.Snapshot{}, common.NewUserError("snapshot is invalid", err)
	}
	return snapshot, nil
}

// loadOverrides reads a what-if overrides JSON file.
func loadOverrides(path string) (model.Overrides, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return model.Overrides{}, fmt.Errorf("failed to read overrides: %w", err)
	}

	var overrides model.Overrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return model.Overrides{}, common.NewUserError("overrides file is not valid JSON", err)
	}
	return overrides, nil
}

// importSnapshot builds a snapshot from an OFX/QFX statement.
func importSnapshot(ctx context.Context, path string, mood int, tags []string) (model.Snapshot, error) {
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close statement", "error", closeErr)
		}
	}()

	snapshot, err := ofx.NewParser().ParseSnapshot(ctx, f, mood, tags)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to import statement: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return model.Snapshot{}, common.NewUserError("imported snapshot is invalid", err)
	}
	return snapshot, nil
}

// saveReport stores a computed report in the history and returns its ID.
func saveReport(ctx context.Context, stored model.StoredReport) (string, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return "", err
	}
	defer closeStorage(store)

	if err := store.SaveReport(ctx, &stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
