package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version  string `json:"version" yaml:"version"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:  version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := currentVersion()
		if format := selectedFormat(cmd); format != formatText {
			return writeStructured(cmd.OutOrStdout(), format, info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scheme-research version %s (%s, %s)\n", info.Version, info.Go, info.Platform)
		return nil
	},
}

func init() {
	addFormatFlags(versionCmd)
	rootCmd.AddCommand(versionCmd)
}
