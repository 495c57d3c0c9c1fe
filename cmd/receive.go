package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/luma/cosmogram/client"
)

var (
	// Print the received messages as JSON
	asJSON bool
)

func init() {
	flags := ReceiveCmd.Flags()

	flags.BoolVar(&asJSON, "json", false, "Print the messages as a JSON document")
}

var ReceiveCmd = &cobra.Command{
	Use:   "receive <user>",
	Short: "Fetch the messages waiting for a user",
	Long: `Fetch the messages waiting for a user

Usage
	cosmogram receive user2
	cosmogram receive user2 --json

If the server reports an error part way through, the messages received
before it are still printed and the error is shown as a warning.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		batch, err := s.linkClient().ReceiveMessages(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON {
			doc, err := renderJSON(batch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), doc)
		} else {
			renderText(cmd.OutOrStdout(), batch)
		}

		if batch.ServerErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", batch.ServerErr.Line)
		}

		return nil
	},
}

func renderText(w io.Writer, batch *client.Batch) {
	for _, msg := range batch.Messages {
		fmt.Fprintf(w, "Message %s from %s to %s at %s: %s\n",
			msg.ID, msg.SenderID, msg.RecipientID, msg.Timestamp, msg.Content)
	}

	fmt.Fprintf(w, "Received %d message(s).\n", len(batch.Messages))
}

// renderJSON renders the batch as
//
//   {"messages":[{"id":...,"sender_id":...}],"error":"..."}
//
// where error is only present if the server reported one.
func renderJSON(batch *client.Batch) (doc string, err error) {
	doc = `{"messages":[]}`

	for _, msg := range batch.Messages {
		doc, err = sjson.Set(doc, "messages.-1", map[string]string{
			"id":           msg.ID,
			"sender_id":    msg.SenderID,
			"recipient_id": msg.RecipientID,
			"content":      msg.Content,
			"timestamp":    msg.Timestamp,
		})
		if err != nil {
			return "", err
		}
	}

	if batch.ServerErr != nil {
		if doc, err = sjson.Set(doc, "error", batch.ServerErr.Line); err != nil {
			return "", err
		}
	}

	return doc, nil
}
