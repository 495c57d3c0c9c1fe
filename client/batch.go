package client

import "github.com/luma/cosmogram/protocol"

// Batch is the result of a ReceiveMessages call.
type Batch struct {
	// Messages in the order the server sent them
	Messages []protocol.Message

	// ServerErr is set when the server ended the reply with an ERROR line.
	// Messages then holds everything received before that line.
	ServerErr *Error
}

// Err returns ServerErr as an error, or nil if the server did not report one.
func (b *Batch) Err() error {
	if b == nil || b.ServerErr == nil {
		return nil
	}

	return b.ServerErr
}
