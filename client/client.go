package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/cosmogram/protocol"
)

const (
	opSend    = "send"
	opReceive = "receive"
)

// Client talks to the message link server. Every call opens its own
// connection, so a Client can be used from several goroutines at once.
type Client struct {
	addr string

	dialTimeout time.Duration
	ioTimeout   time.Duration

	now func() time.Time

	log *zap.Logger
}

func New(options Options) *Client {
	options = options.withDefaults()

	return &Client{
		addr:        net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		dialTimeout: options.DialTimeout,
		ioTimeout:   options.IOTimeout,
		now:         options.Now,
		log:         options.Log,
	}
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string {
	return c.addr
}

// SendMessage delivers content from senderID to recipientID. It succeeds only
// if the server replies with OK.
func (c *Client) SendMessage(ctx context.Context, senderID, recipientID, content string) (err error) {
	log := c.log.Named(opSend).With(
		zap.String("senderID", senderID),
		zap.String("recipientID", recipientID))

	req := protocol.NewSendRequest(senderID, recipientID, content, c.now())

	line, err := protocol.EncodeRequest(req)
	if err != nil {
		return fmt.Errorf("%s: %w", opSend, err)
	}

	conn, err := c.dial(ctx, opSend)
	if err != nil {
		log.Debug("Failed to connect", zap.String("addr", c.addr), zap.Error(err))
		return err
	}

	defer c.closeConn(conn, &err, log)

	log.Debug("Sending command", zap.ByteString("command", line))

	if err := conn.Write(line); err != nil {
		return &Error{Kind: KindIO, Op: opSend, Addr: c.addr, Err: err}
	}

	reply, err := conn.ReadLine()
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	if err != nil {
		return &Error{Kind: KindIO, Op: opSend, Addr: c.addr, Err: err}
	}

	log.Debug("Server replied", zap.ByteString("reply", reply))

	resp, perr := protocol.ParseResponse(reply)
	if perr != nil || resp.Type != protocol.RespOk {
		protoErr := &Error{Kind: KindProtocol, Op: opSend, Addr: c.addr, Line: string(reply)}
		if perr == nil {
			protoErr.Err = resp.ErrorOrNil()
		}

		return protoErr
	}

	return nil
}

// ReceiveMessages fetches the messages waiting for userID.
//
// Reply lines are read until the server closes the connection. MESSAGE lines
// that do not have exactly six fields and lines that are not understood are
// skipped. An ERROR line stops the read, the messages received before it are
// returned along with the server error in Batch.ServerErr.
//
// If reading fails part way through, the messages received so far are returned
// together with the error.
func (c *Client) ReceiveMessages(ctx context.Context, userID string) (batch *Batch, err error) {
	log := c.log.Named(opReceive).With(zap.String("userID", userID))

	line, err := protocol.EncodeRequest(&protocol.ReceiveRequest{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opReceive, err)
	}

	conn, err := c.dial(ctx, opReceive)
	if err != nil {
		log.Debug("Failed to connect", zap.String("addr", c.addr), zap.Error(err))
		return nil, err
	}

	defer c.closeConn(conn, &err, log)

	log.Debug("Sending command", zap.ByteString("command", line))

	if err := conn.Write(line); err != nil {
		return nil, &Error{Kind: KindIO, Op: opReceive, Addr: c.addr, Err: err}
	}

	batch = &Batch{Messages: make([]protocol.Message, 0)}

	for {
		reply, err := conn.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return batch, &Error{Kind: KindIO, Op: opReceive, Addr: c.addr, Err: err}
		}

		resp, err := protocol.ParseResponse(reply)
		if err != nil {
			log.Debug("Skipping reply line", zap.ByteString("reply", reply), zap.Error(err))
			continue
		}

		switch resp.Type {
		case protocol.RespMessage:
			batch.Messages = append(batch.Messages, resp.Message)

		case protocol.RespErr:
			batch.ServerErr = &Error{
				Kind: KindServer,
				Op:   opReceive,
				Addr: c.addr,
				Line: resp.ErrMessage,
				Err:  resp.ErrorOrNil(),
			}

			log.Warn("Server reported an error, ignoring the rest of the reply",
				zap.String("error", resp.ErrMessage),
				zap.Int("count", len(batch.Messages)))

			return batch, nil

		default:
			log.Debug("Skipping reply line", zap.ByteString("reply", reply))
		}
	}

	log.Debug("Received messages", zap.Int("count", len(batch.Messages)))

	return batch, nil
}

// closeConn closes conn. A close failure only becomes the result of the call
// if the call had already failed, otherwise it is logged.
func (c *Client) closeConn(conn *linkConn, err *error, log *zap.Logger) {
	cerr := conn.Close()
	if cerr == nil {
		return
	}

	if *err != nil {
		*err = multierr.Append(*err, cerr)
		return
	}

	log.Warn("Failed to close connection cleanly", zap.Error(cerr))
}
