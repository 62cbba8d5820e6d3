package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Start a line-based chat over the index. Each answer is shown with its
source page and a summary. The history lasts for this session only.

Commands:
  /history  show the questions asked so far
  /save     save the index
  /quit     leave (also exit, quit or Ctrl-D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	stop := watchPrompts()
	defer stop()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintf(out, "%d document(s) indexed. Type a question, or /quit to leave.\n", retrieval.IndexSize())

	for {
		fmt.Fprint(out, "\n> ")
		line, readErr := reader.ReadString('\n')
		query := strings.TrimSpace(line)

		switch {
		case query == "":
		case isQuit(query):
			return nil
		case query == "/history":
			printHistory(out, retrieval.History())
		case query == "/save":
			if err := retrieval.Save(cmd.Context()); err != nil {
				fmt.Fprintln(out, Describe(err))
			} else {
				fmt.Fprintf(out, "Saved to %s\n", retrieval.StorePath())
			}
		default:
			turn, err := retrieval.Answer(cmd.Context(), query)
			if err != nil {
				fmt.Fprintln(out, Describe(err))
				if ctxErr := cmd.Context().Err(); ctxErr != nil {
					return ctxErr
				}
				break
			}
			printTurn(out, turn)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return readErr
		}
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "/quit", "/exit", "quit", "exit":
		return true
	}
	return false
}

func printHistory(w io.Writer, turns []domain.ChatTurn) {
	if len(turns) == 0 {
		fmt.Fprintln(w, "No questions yet.")
		return
	}
	for _, turn := range turns {
		fmt.Fprintf(w, "[%d] %s\n", turn.Seq, turn.Query)
		fmt.Fprintf(w, "    %s\n", turn.Answer)
		if turn.Answered() {
			fmt.Fprintf(w, "    (%s)\n", turn.Source)
		}
	}
}
