package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cliVersion is set by Execute from the build-time version.
var cliVersion = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("jobtrail version: %s\n", cliVersion)
	},
}
