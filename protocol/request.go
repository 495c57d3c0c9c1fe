package protocol

import "time"

// TimestampLayout is the layout of the timestamp field of SEND and MESSAGE lines.
const TimestampLayout = "2006-01-02 15:04:05"

type Request interface {
	GetCommand() Command

	// Fields returns the values that follow the command name, in wire order.
	Fields() []string
}

type SendRequest struct {
	SenderID    string
	RecipientID string
	Content     string
	Timestamp   string
}

// NewSendRequest builds a SEND request stamped with the local time of at.
func NewSendRequest(senderID, recipientID, content string, at time.Time) *SendRequest {
	return &SendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   FormatTimestamp(at),
	}
}

func (q *SendRequest) GetCommand() Command {
	return SEND
}

func (q *SendRequest) Fields() []string {
	return []string{q.SenderID, q.RecipientID, q.Content, q.Timestamp}
}

type ReceiveRequest struct {
	UserID string
}

func (q *ReceiveRequest) GetCommand() Command {
	return RECEIVE
}

func (q *ReceiveRequest) Fields() []string {
	return []string{q.UserID}
}

func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

var _ Request = (*SendRequest)(nil)
var _ Request = (*ReceiveRequest)(nil)
