package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/tui"
)

var errNoTerminal = errors.New("tui needs an interactive terminal; use 'chat' instead")

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Full-screen chat over the index",
	Long: `Open the full-screen chat. Answers show their source page and summary;
the history is kept for this session only.

Keys:
  enter    ask the question (or load the URLs in ingest mode)
  ctrl+u   switch between asking and ingesting URLs
  ctrl+s   save the index
  tab      browse indexed documents
  f1       help
  esc      clear input, leave ingest mode, go back
  ctrl+c   quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{Retrieval: retrieval})
	if err != nil {
		return fmt.Errorf("starting tui: %w", err)
	}
	app.WithContext(cmd.Context())

	stop := watchPrompts()
	defer stop()

	// bubbletea restores the terminal on panic but swallows the stack.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui panic: %v\n%s", r, debug.Stack())
		}
	}()

	if err := app.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
