package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/cosmogram/internal/meta"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the client",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), meta.GetInfo())
	},
}
