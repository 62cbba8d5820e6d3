package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

// outputFormat is the structured output selected by --json or --yaml.
type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
)

// addFormatFlags registers --json and --yaml on cmd.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().Bool("yaml", false, "output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func selectedFormat(cmd *cobra.Command) outputFormat {
	if ok, _ := cmd.Flags().GetBool("json"); ok { //nolint:errcheck // flag is registered
		return formatJSON
	}
	if ok, _ := cmd.Flags().GetBool("yaml"); ok { //nolint:errcheck // flag is registered
		return formatYAML
	}
	return formatText
}

var errTextFormat = errors.New("text format has no encoder")

func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errTextFormat
	}
}

// printTurn renders a chat turn as answer, source and summary.
func printTurn(w io.Writer, turn domain.ChatTurn) {
	fmt.Fprintf(w, "Answer: %s\n", turn.Answer)
	if !turn.Answered() {
		return
	}
	fmt.Fprintf(w, "Source: %s\n", turn.Source)
	fmt.Fprintf(w, "Summary: %s\n", turn.Summary)
}
