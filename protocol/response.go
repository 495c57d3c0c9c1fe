package protocol

import "errors"

// Message is a single message delivered in reply to a RECEIVE request.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string
	Timestamp   string
}

// Fields returns the message values in wire order.
func (m Message) Fields() []string {
	return []string{m.ID, m.SenderID, m.RecipientID, m.Content, m.Timestamp}
}

type Response struct {
	Type ResponseType

	// Message is only set for RespMessage responses
	Message Message

	// ErrMessage is only set for RespErr responses
	ErrMessage string

	// Raw is the line the response was parsed from, without the line terminator
	Raw string
}

// ErrorOrNil returns an error if the response contains an error. Otherwise it
// returns nil.
func (r *Response) ErrorOrNil() error {
	if r.Type == RespErr {
		return errors.New(r.ErrMessage)
	}

	return nil
}
