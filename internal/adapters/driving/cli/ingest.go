package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

var (
	ingestURLs    []string
	ingestFile    string
	ingestReplace bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load web pages into the index",
	Long: `Fetch each URL, extract its text, embed it and add it to the index.
The index is saved when ingestion succeeds.

URLs come from repeated --url flags followed by the lines of --file.
Blank lines are ignored. Pages that fail to load are skipped and listed.

By default new pages are added to the existing index. Use --replace to
build a fresh index from this batch only.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringArrayVarP(&ingestURLs, "url", "u", nil, "URL to load (repeatable)")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "file with one URL per line")
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "discard the existing index")
	addFormatFlags(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	urls, err := collectURLs(ingestURLs, ingestFile)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return domain.ErrEmptyInput
	}

	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	mode := domain.IngestMerge
	if ingestReplace {
		mode = domain.IngestReplace
	}

	report, err := retrieval.Ingest(cmd.Context(), urls, mode)
	if err != nil {
		return err
	}

	if format := selectedFormat(cmd); format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, report)
	}

	cmd.Printf("Loaded %d of %d URL(s).\n", report.Loaded, report.Requested)
	if len(report.Skipped) > 0 {
		cmd.Println("Skipped:")
		for _, u := range report.Skipped {
			cmd.Printf("  %s\n", u)
		}
	}
	cmd.Printf("Index now holds %d document(s) (%s).\n", report.IndexSize, retrieval.StorePath())
	return nil
}

// collectURLs merges flag URLs with the lines of path, in that order.
// Blank lines are dropped; duplicates are kept.
func collectURLs(flagURLs []string, path string) ([]string, error) {
	urls := make([]string, 0, len(flagURLs))
	for _, u := range flagURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if path == "" {
		return urls, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}
