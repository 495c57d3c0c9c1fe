package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	password        string
	confirmPassword string
)

func init() {
	registerFlags := RegisterCmd.Flags()
	registerFlags.StringVar(&password, "password", "", "The password of the new account")
	registerFlags.StringVar(&confirmPassword, "confirm-password", "", "The password again, defaults to --password")

	loginFlags := LoginCmd.Flags()
	loginFlags.StringVar(&password, "password", "", "The password of the account")
}

var errPasswordRequired = errors.New("--password is required")

var RegisterCmd = &cobra.Command{
	Use:   "register <login>",
	Short: "Register a new account",
	Long: `Register a new account with the account API

Usage
	cosmogram register user1 --password password123
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if password == "" {
			return errPasswordRequired
		}

		confirm := confirmPassword
		if !cmd.Flags().Changed("confirm-password") {
			confirm = password
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.accountClient().Register(cmd.Context(), args[0], password, confirm); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s.\n", args[0])
		return nil
	},
}

var LoginCmd = &cobra.Command{
	Use:   "login <login>",
	Short: "Check the credentials of an account",
	Long: `Check the credentials of an account against the account API

Usage
	cosmogram login user1 --password password123
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if password == "" {
			return errPasswordRequired
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.accountClient().Login(cmd.Context(), args[0], password); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", args[0])
		return nil
	},
}
