package compositor

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the compositor version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "compositor %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
