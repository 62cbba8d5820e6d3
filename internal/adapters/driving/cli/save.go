package cli

import (
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current index",
	Long:  `Write the loaded index back to its store. Ingestion already saves; use this to rewrite the store, e.g. after changing backends.`,
	Args:  cobra.NoArgs,
	RunE:  runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, _ []string) error {
	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}
	if err := retrieval.Save(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Saved %d document(s) to %s\n", retrieval.IndexSize(), retrieval.StorePath())
	return nil
}
