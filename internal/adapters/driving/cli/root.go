// Package cli provides the scheme-research command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var (
	settingsService  driving.SettingsService
	retrievalService driving.RetrievalService
	wiring           *Wiring
	session          *Session
)

// Wiring builds services on demand, so settings commands keep working when
// the configured providers cannot be reached.
type Wiring struct {
	// Settings opens the settings service for configDir.
	Settings func(configDir string) (driving.SettingsService, error)

	// Session builds a retrieval session from the current settings.
	Session func(ctx context.Context, configDir string, settings driving.SettingsService) (*Session, error)
}

// Session is a built retrieval session plus its long-running extras.
type Session struct {
	Retrieval driving.RetrievalService

	// WatchPrompts starts reloading prompt templates on change. Optional.
	WatchPrompts func() (stop func() error, err error)

	// Close releases provider and store resources. Optional.
	Close func()
}

var rootCmd = &cobra.Command{
	Use:   "scheme-research",
	Short: "Ask questions about web pages",
	Long: `scheme-research loads web pages, indexes them as vectors and answers
questions from the most relevant page, with its source and a short summary.

  scheme-research ingest --url https://example.gov/scheme
  scheme-research ask "Who is eligible?"
  scheme-research chat`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration and data directory (default ~/.scheme-research)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring installs the service constructors used by the commands.
func SetWiring(w *Wiring) {
	wiring = w
}

// Execute runs the root command and releases the session afterwards.
func Execute(ctx context.Context) error {
	defer closeSession()
	return rootCmd.ExecuteContext(ctx)
}

// Describe turns an error into a message for the terminal.
func Describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return "Error: no URLs given. Use --url or --file."
	case errors.Is(err, domain.ErrNoDocuments):
		return fmt.Sprintf("Error: %v\nNone of the URLs could be loaded; run with --verbose for details.", err)
	case errors.Is(err, domain.ErrStoreCorrupt):
		return fmt.Sprintf("Error: %v\nThe saved index cannot be read. Re-ingest with --replace to rebuild it.", err)
	case errors.Is(err, domain.ErrDimensionMismatch), errors.Is(err, domain.ErrMetricMismatch):
		return fmt.Sprintf("Error: %v\nThe saved index was built with different embedding settings. Run 'scheme-research ingest --replace' to rebuild it.", err)
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrQAUnavailable):
		return fmt.Sprintf("Error: %v\nRun 'scheme-research settings show' to review the configuration.", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func getSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if wiring == nil || wiring.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	svc, err := wiring.Settings(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	settingsService = svc
	return svc, nil
}

func getRetrieval(cmd *cobra.Command) (driving.RetrievalService, error) {
	if retrievalService != nil {
		return retrievalService, nil
	}
	settings, err := getSettings()
	if err != nil {
		return nil, err
	}
	if wiring.Session == nil {
		return nil, errors.New("retrieval service not configured")
	}
	sess, err := wiring.Session(cmd.Context(), configDir, settings)
	if err != nil {
		return nil, err
	}
	session = sess
	retrievalService = sess.Retrieval
	return retrievalService, nil
}

// watchPrompts starts the prompt watcher if the session has one.
// The returned stop function is always safe to call.
func watchPrompts() func() {
	if session == nil || session.WatchPrompts == nil {
		return func() {}
	}
	stop, err := session.WatchPrompts()
	if err != nil {
		logger.Warn("prompt watcher not started: %v", err)
		return func() {}
	}
	return func() {
		if err := stop(); err != nil {
			logger.Warn("stopping prompt watcher: %v", err)
		}
	}
}

func closeSession() {
	if session != nil && session.Close != nil {
		session.Close()
	}
	session = nil
}
