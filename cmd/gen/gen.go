package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generators for the client's documentation",
	Long:  `Generators for the client's documentation`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
