package cli

import (
	"unicode/utf8"

	"github.com/spf13/cobra"
)

// documentSummary is the structured form of one inspect row.
type documentSummary struct {
	ID            string `json:"id" yaml:"id"`
	Source        string `json:"source" yaml:"source"`
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	ContentLength int    `json:"content_length" yaml:"content_length"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	addFormatFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	docs := retrieval.Documents()
	rows := make([]documentSummary, len(docs))
	for i := range docs {
		rows[i] = documentSummary{
			ID:            docs[i].ID,
			Source:        docs[i].Source,
			Title:         docs[i].Title,
			ContentLength: utf8.RuneCountInString(docs[i].Content),
		}
	}

	if format := selectedFormat(cmd); format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, rows)
	}

	if len(rows) == 0 {
		cmd.Printf("The index at %s is empty.\n", retrieval.StorePath())
		return nil
	}

	cmd.Printf("Index: %s\n\n", retrieval.StorePath())
	for i := range rows {
		title := rows[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%d] %s\n", i+1, title)
		cmd.Printf("      Source: %s\n", rows[i].Source)
		cmd.Printf("      Length: %d characters\n", rows[i].ContentLength)
	}
	cmd.Printf("\nTotal: %d documents\n", len(rows))
	return nil
}
