package linktest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/luma/cosmogram/protocol"
)

// Mailbox is an in-memory message store that speaks the link protocol. SEND
// requests are stored under their recipient and acknowledged with OK, RECEIVE
// requests are answered with every stored message for the user, which are
// then removed.
//
// Messages are kept as a single JSON object keyed by recipient. The document
// is always an object, so numeric user IDs stay object keys rather than
// becoming array indexes.
type Mailbox struct {
	mu     sync.Mutex
	values []byte
	lastID int
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		values: []byte("{}"),
	}
}

// Deliver stores a sent message for its recipient and returns it with its
// newly assigned ID.
func (m *Mailbox) Deliver(req *protocol.SendRequest) (msg protocol.Message, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++

	msg = protocol.Message{
		ID:          strconv.Itoa(m.lastID),
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
		Timestamp:   req.Timestamp,
	}

	m.values, err = sjson.SetBytes(m.values, escapeKey(req.RecipientID)+".-1", map[string]string{
		"id":           msg.ID,
		"sender_id":    msg.SenderID,
		"recipient_id": msg.RecipientID,
		"content":      msg.Content,
		"timestamp":    msg.Timestamp,
	})
	if err != nil {
		return protocol.Message{}, err
	}

	return msg, nil
}

// Collect returns and removes every message waiting for userID.
func (m *Mailbox) Collect(userID string) ([]protocol.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := escapeKey(userID)
	messages := readMessages(gjson.GetBytes(m.values, key))

	if len(messages) == 0 {
		return messages, nil
	}

	values, err := sjson.DeleteBytes(m.values, key)
	if err != nil {
		return nil, err
	}

	m.values = values
	return messages, nil
}

// Pending returns the number of messages waiting for userID.
func (m *Mailbox) Pending(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int(gjson.GetBytes(m.values, escapeKey(userID)+".#").Int())
}

// Restore replaces the mailbox contents with a document produced by Backup.
func (m *Mailbox) Restore(values []byte) error {
	if !gjson.ValidBytes(values) {
		return fmt.Errorf("mailbox restore: invalid JSON")
	}

	if !gjson.ParseBytes(values).IsObject() {
		return fmt.Errorf("mailbox restore: expected a JSON object keyed by user ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = append([]byte(nil), values...)
	return nil
}

// Backup returns a copy of the mailbox contents.
func (m *Mailbox) Backup() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.values...), nil
}

func (m *Mailbox) Handle(ctx context.Context, w io.Writer, req protocol.Request) error {
	switch r := req.(type) {
	case *protocol.SendRequest:
		if _, err := m.Deliver(r); err != nil {
			return protocol.WriteError(w, "could not store message")
		}

		return protocol.WriteOk(w)

	case *protocol.ReceiveRequest:
		messages, err := m.Collect(r.UserID)
		if err != nil {
			return protocol.WriteError(w, "could not load messages")
		}

		for _, msg := range messages {
			if err := protocol.WriteMessage(w, msg); err != nil {
				return err
			}
		}

		return nil

	default:
		return protocol.WriteError(w, "unsupported command")
	}
}

func readMessages(result gjson.Result) []protocol.Message {
	messages := make([]protocol.Message, 0)

	result.ForEach(func(_, value gjson.Result) bool {
		messages = append(messages, protocol.Message{
			ID:          value.Get("id").String(),
			SenderID:    value.Get("sender_id").String(),
			RecipientID: value.Get("recipient_id").String(),
			Content:     value.Get("content").String(),
			Timestamp:   value.Get("timestamp").String(),
		})

		return true
	})

	return messages
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`#`, `\#`,
	`@`, `\@`,
	`|`, `\|`,
)

// escapeKey makes a user ID safe to use as a single gjson/sjson path component.
func escapeKey(userID string) string {
	return keyEscaper.Replace(userID)
}

var _ Handler = (*Mailbox)(nil)
