package client

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luma/cosmogram/protocol"
)

// linkConn is a single use connection to the message link server. It carries
// exactly one command and its reply.
type linkConn struct {
	ctx context.Context

	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	ioTimeout time.Duration

	stop      chan struct{}
	closeOnce sync.Once
	closeErr  error

	log *zap.Logger
}

func (c *Client) dial(ctx context.Context, op string) (*linkConn, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, &Error{Kind: KindConnect, Op: op, Addr: c.addr, Err: err}
	}

	l := &linkConn{
		ctx:       ctx,
		conn:      conn,
		r:         bufio.NewReader(conn),
		w:         bufio.NewWriter(conn),
		ioTimeout: c.ioTimeout,
		stop:      make(chan struct{}),
		log:       c.log.Named("conn").With(zap.String("op", op)),
	}

	go l.watch()

	return l, nil
}

// watch closes the connection as soon as the context is done, which unblocks
// any pending read or write.
func (l *linkConn) watch() {
	select {
	case <-l.ctx.Done():
		l.log.Debug("Context done, closing connection", zap.Error(l.ctx.Err()))
		l.closeConn()

	case <-l.stop:
	}
}

// Write writes one encoded command and flushes it.
func (l *linkConn) Write(line []byte) error {
	if err := l.conn.SetWriteDeadline(l.deadline()); err != nil {
		return l.ioError(err)
	}

	if _, err := l.w.Write(line); err != nil {
		return l.ioError(err)
	}

	if err := l.w.Flush(); err != nil {
		return l.ioError(err)
	}

	return nil
}

// ReadLine reads the next reply line. It returns io.EOF once the server has
// closed the connection.
func (l *linkConn) ReadLine() ([]byte, error) {
	if err := l.conn.SetReadDeadline(l.deadline()); err != nil {
		return nil, l.ioError(err)
	}

	line, err := protocol.ReadLine(l.r)
	if err != nil {
		if errors.Is(err, io.EOF) && l.ctx.Err() == nil {
			return nil, io.EOF
		}

		return nil, l.ioError(err)
	}

	return line, nil
}

func (l *linkConn) Close() error {
	close(l.stop)
	return l.closeConn()
}

func (l *linkConn) closeConn() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.conn.Close()
	})

	return l.closeErr
}

func (l *linkConn) deadline() time.Time {
	deadline := time.Now().Add(l.ioTimeout)

	if ctxDeadline, ok := l.ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}

	return deadline
}

// ioError prefers the context error when the connection was torn down
// because the context finished.
func (l *linkConn) ioError(err error) error {
	if ctxErr := l.ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return err
}
