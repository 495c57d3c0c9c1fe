package client

import (
	"errors"
	"fmt"
)

// Kind classifies the failures of a message link call.
type Kind int

const (
	// KindConnect means the TCP connection could not be established.
	KindConnect Kind = iota + 1

	// KindIO means writing the command or reading the reply failed,
	// including the server closing the connection early.
	KindIO

	// KindProtocol means the server replied with something unexpected.
	KindProtocol

	// KindServer means the server sent an explicit ERROR line.
	KindServer
)

var (
	ErrConnect  = errors.New("could not connect to the message link")
	ErrIO       = errors.New("message link i/o failed")
	ErrProtocol = errors.New("unexpected message link response")
	ErrServer   = errors.New("message link server error")
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnect:
		return ErrConnect
	case KindIO:
		return ErrIO
	case KindProtocol:
		return ErrProtocol
	case KindServer:
		return ErrServer
	default:
		return nil
	}
}

// Error is returned by every failed message link call. Use errors.Is with
// ErrConnect, ErrIO, ErrProtocol or ErrServer to check the Kind.
type Error struct {
	Kind Kind

	// Op is the operation that failed, "send" or "receive"
	Op string

	// Addr is the address of the message link server
	Addr string

	// Line is the raw reply for KindProtocol and the error message for KindServer
	Line string

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProtocol:
		return fmt.Sprintf("%s %s: %s: %q", e.Op, e.Addr, ErrProtocol, e.Line)
	case KindServer:
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Addr, ErrServer, e.Line)
	}

	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, e.Kind.sentinel())
	}

	return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Addr, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
