// Command scheme-research answers questions about web pages from a local vector index.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/ai"
	"github.com/custodia-labs/scheme-research/internal/adapters/driven/config/file"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/cli"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
	"github.com/custodia-labs/scheme-research/internal/core/services"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const promptDebounce = 250 * time.Millisecond

func main() {
	// A missing .env is fine; keys may come from the environment or config.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetWiring(&cli.Wiring{
		Settings: openSettings,
		Session:  openSession,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		stop()
		os.Exit(1)
	}
}

func dataDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return file.DefaultDir()
}

func openSettings(configDir string) (driving.SettingsService, error) {
	dir, err := dataDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

func openSession(ctx context.Context, configDir string, settingsSvc driving.SettingsService) (*cli.Session, error) {
	dir, err := dataDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	svc, err := ai.Build(settings, ai.Options{
		DataDir:  dir,
		Prompts:  prompts,
		Validate: true,
	})
	if err != nil {
		return nil, err
	}

	retrieval, err := services.NewRetrievalSession(svc.Embedding, svc.Loader, svc.Synthesizer, svc.Store, settings.Index.Metric)
	if err != nil {
		svc.Close()
		return nil, err
	}

	found, err := retrieval.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrStoreCorrupt), errors.Is(err, domain.ErrDimensionMismatch):
		logger.Error("%v; starting with an empty index. Ingest with --replace to rebuild it.", err)
	case err != nil:
		svc.Close()
		return nil, err
	case !found:
		logger.Info("no saved index at %s; starting empty", retrieval.StorePath())
	}

	return &cli.Session{
		Retrieval: retrieval,
		WatchPrompts: func() (func() error, error) {
			w, err := file.WatchPrompts(prompts, promptDebounce)
			if err != nil {
				return nil, err
			}
			return w.Stop, nil
		},
		Close: svc.Close,
	}, nil
}
