package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var SendCmd = &cobra.Command{
	Use:   "send <sender> <recipient> <content...>",
	Short: "Send a message to another user",
	Long: `Send a message to another user

Usage
	cosmogram send user1 user2 Hello from user1!

Everything after the recipient is joined with spaces to form the message.
`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		content := strings.Join(args[2:], " ")

		if err := s.linkClient().SendMessage(cmd.Context(), args[0], args[1], content); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Message sent to %s.\n", args[1])
		return nil
	},
}
