package cli

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

var (
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.SettingsService  = (*mockSettingsService)(nil)
)

type mockRetrievalService struct {
	turns     map[string]domain.ChatTurn
	answerErr error
	report    *domain.IngestReport
	ingestErr error
	saveErr   error
	documents []domain.Document
	history   []domain.ChatTurn

	ingestCalls int
	lastURLs    []string
	lastMode    domain.IngestMode
	saved       int
}

func (m *mockRetrievalService) Ingest(
	_ context.Context, urls []string, mode domain.IngestMode,
) (*domain.IngestReport, error) {
	m.ingestCalls++
	m.lastURLs = urls
	m.lastMode = mode
	return m.report, m.ingestErr
}

func (m *mockRetrievalService) Answer(_ context.Context, query string) (domain.ChatTurn, error) {
	if m.answerErr != nil {
		return domain.ChatTurn{}, m.answerErr
	}
	turn, ok := m.turns[query]
	if !ok {
		turn = domain.ChatTurn{Query: query, Answer: domain.NoRelevantInformation}
	}
	turn.Seq = len(m.history) + 1
	m.history = append(m.history, turn)
	return turn, nil
}

func (m *mockRetrievalService) Save(_ context.Context) error {
	m.saved++
	return m.saveErr
}

func (m *mockRetrievalService) Load(_ context.Context) (bool, error) { return len(m.documents) > 0, nil }
func (m *mockRetrievalService) History() []domain.ChatTurn            { return m.history }
func (m *mockRetrievalService) IndexSize() int                        { return len(m.documents) }
func (m *mockRetrievalService) Documents() []domain.Document          { return m.documents }
func (m *mockRetrievalService) StorePath() string                     { return "/data/index.json" }

type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	setErr      error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := []string{"synthesizer.kind", "index.metric", "embedding.api_key"}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) SetSynthesizer(kind domain.SynthesizerKind) error {
	m.settings.Synthesizer = kind
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetQAProvider(p domain.QAProvider, model, apiKey string) error {
	m.settings.QA = domain.QASettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error                   { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings   { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error    { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error          { return nil }

// setupTestServices installs mocks as the command services.
func setupTestServices(t *testing.T) (*mockRetrievalService, *mockSettingsService) {
	t.Helper()
	retrieval := &mockRetrievalService{}
	settings := newMockSettingsService()

	prevRetrieval, prevSettings, prevWiring := retrievalService, settingsService, wiring
	retrievalService, settingsService, wiring = retrieval, settings, nil
	t.Cleanup(func() {
		retrievalService, settingsService, wiring = prevRetrieval, prevSettings, prevWiring
		session = nil
	})
	return retrieval, settings
}

// runCommand executes the root command with args and stdin, returning
// everything written to stdout and stderr.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
