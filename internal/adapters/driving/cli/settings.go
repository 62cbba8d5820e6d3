package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the answer strategy, AI providers and index storage.

Use subcommands to change single values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by its dot-notation key, for example:

  scheme-research settings set synthesizer.kind generative
  scheme-research settings set index.metric cosine

Run 'scheme-research settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsKeyCmd = &cobra.Command{
	Use:       "key [embedding|llm|qa]",
	Short:     "Store an API key without echoing it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"embedding", "llm", "qa"},
	RunE:      runSettingsKey,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := getSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Answers]")
	cmd.Printf("  Synthesizer: %s\n", settings.Synthesizer.Description())
	cmd.Printf("  Answer tokens: %d\n", settings.Generation.AnswerMaxTokens)
	cmd.Printf("  Summary tokens: %d\n", settings.Generation.SummaryMaxTokens)
	cmd.Printf("  Summary characters: %d\n", settings.Generation.SummaryChars)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		printAPIKey(cmd, settings.Embedding.APIKey)
	}
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	if settings.Synthesizer == domain.SynthesizerGenerative {
		cmd.Println("[LLM]")
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			printAPIKey(cmd, settings.LLM.APIKey)
		}
		printStatus(cmd, settings.LLM.IsConfigured())
	} else {
		cmd.Println("[Question Answering]")
		cmd.Printf("  Provider: %s\n", settings.QA.Provider)
		if settings.QA.Provider == domain.QAProviderHuggingFace {
			cmd.Printf("  Model: %s\n", settings.QA.Model)
			printAPIKey(cmd, settings.QA.APIKey)
		}
		printStatus(cmd, settings.QA.IsConfigured())
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Metric: %s\n", settings.Index.Metric)
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	if settings.Index.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Index.Path)
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'scheme-research settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printAPIKey(cmd *cobra.Command, key string) {
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettings()
	if err != nil {
		return err
	}
	if err := svc.SetValue(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := getSettings()
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsKey(cmd *cobra.Command, args []string) error {
	section := args[0]
	switch section {
	case "embedding", "llm", "qa":
	default:
		return fmt.Errorf("%w: unknown key section %q (want embedding, llm or qa)", domain.ErrInvalidInput, section)
	}

	svc, err := getSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Enter %s API key: ", section)
	key := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}

	if err := svc.SetValue(section+".api_key", key); err != nil {
		return err
	}
	cmd.Printf("Stored %s API key %s\n", section, maskAPIKey(key))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := getSettings()
	if err != nil {
		return err
	}

	cmd.Println("scheme-research Settings Wizard")
	cmd.Println("===============================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Select Answer Strategy")
	cmd.Println("------------------------------")
	kinds := []domain.SynthesizerKind{domain.SynthesizerExtractive, domain.SynthesizerGenerative}
	for i, kind := range kinds {
		cmd.Printf("  %d. %s\n", i+1, kind.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	kind := kinds[parseChoice(readLine(reader), len(kinds), 1)-1]
	if err := svc.SetSynthesizer(kind); err != nil {
		return fmt.Errorf("failed to set synthesizer: %w", err)
	}
	cmd.Printf("Set synthesizer to: %s\n\n", kind.Description())

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, svc, reader); err != nil {
		return err
	}

	if kind == domain.SynthesizerGenerative {
		cmd.Println("Step 3: Configure LLM Provider")
		cmd.Println("------------------------------")
		if err := configureLLMProvider(cmd, svc, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Step 3: Configure Question Answering")
		cmd.Println("------------------------------------")
		if err := configureQAProvider(cmd, svc, reader); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := svc.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selected.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := svc.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selected.Description(), model)
	return nil
}

func configureQAProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select Question Answering Backend")
	providers := []domain.QAProvider{domain.QAProviderLexical, domain.QAProviderHuggingFace}
	cmd.Println("  1. Lexical (offline sentence matching)")
	cmd.Println("  2. Hugging Face (hosted span extraction)")
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	var model, apiKey string
	if selected == domain.QAProviderHuggingFace {
		cmd.Printf("Enter model name [%s]: ", domain.DefaultQAModel)
		if model = readLine(reader); model == "" {
			model = domain.DefaultQAModel
		}
		cmd.Print("Enter API token (optional): ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
	}

	if err := svc.SetQAProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure question answering: %w", err)
	}

	cmd.Printf("Question answering configured: %s\n\n", selected)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when the command's input is a
// terminal, otherwise it reads a line from reader.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
