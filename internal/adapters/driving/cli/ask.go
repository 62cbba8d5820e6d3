package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the index",
	Long: `Answer a question from the single most relevant indexed page.
Prints the answer, the page it came from and a summary of that page.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addFormatFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	turn, err := retrieval.Answer(cmd.Context(), question)
	if err != nil {
		return err
	}

	if format := selectedFormat(cmd); format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, turn)
	}
	printTurn(cmd.OutOrStdout(), turn)
	return nil
}
