package linktest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/cosmogram/protocol"
)

// Handler writes the reply to a single request. The connection is closed by
// the server once Handle returns, which ends the reply stream.
type Handler interface {
	Handle(ctx context.Context, w io.Writer, req protocol.Request) error
}

type HandlerFunc func(ctx context.Context, w io.Writer, req protocol.Request) error

func (f HandlerFunc) Handle(ctx context.Context, w io.Writer, req protocol.Request) error {
	return f(ctx, w, req)
}

type Options struct {
	// Host to listen on, defaults to 127.0.0.1
	Host string

	// Port to listen on, 0 picks a free port
	Port int

	// Reuseport controls setting SO_REUSEPORT
	Reuseport bool

	Handler Handler

	Log *zap.Logger
}

// Server is a stub message link server. It accepts connections, reads one
// request line from each, hands it to the Handler and closes the connection.
type Server struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	addr      string
	reuseport bool
	listener  net.Listener

	handler Handler

	mu          sync.Mutex
	activeConns map[net.Conn]struct{}
	requests    []string

	log *zap.Logger
}

func NewServer(options Options) *Server {
	host := options.Host
	if host == "" {
		host = "127.0.0.1"
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		addr:        net.JoinHostPort(host, strconv.Itoa(options.Port)),
		reuseport:   options.Reuseport,
		handler:     options.Handler,
		activeConns: make(map[net.Conn]struct{}),
		log:         log,
	}
}

// Start listens and begins accepting connections. The server is listening by
// the time Start returns.
func (s *Server) Start(parentCtx context.Context) error {
	var (
		listener net.Listener
		err      error
	)

	if s.reuseport {
		listener, err = reuseport.Listen("tcp", s.addr)
	} else {
		listener, err = net.Listen("tcp", s.addr)
	}

	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel
	s.listener = listener
	s.addr = listener.Addr().String()

	s.log.Info("Listening", zap.String("addr", s.addr))

	s.stopWaiter.Add(1)
	go func() {
		defer s.stopWaiter.Done()

		if err := s.acceptLoop(ctx); err != nil {
			s.log.Error("Failed to accept", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.addr)
	return host
}

func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.addr)
	p, _ := strconv.Atoi(port)
	return p
}

// Requests returns the raw request lines received so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]string, len(s.requests))
	copy(requests, s.requests)
	return requests
}

// Close stops accepting connections, closes the active ones and waits for
// their handlers to return.
func (s *Server) Close() error {
	s.log.Info("Stopping stub server")

	if s.cancel == nil {
		return nil
	}

	s.cancel()

	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	s.mu.Lock()
	for conn := range s.activeConns {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
		delete(s.activeConns, conn)
	}
	s.mu.Unlock()

	s.stopWaiter.Wait()

	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				// The listener was closed while we were waiting for new
				// connections, that's fine.
				return nil
			}

			return err
		}

		s.addConn(conn)

		s.stopWaiter.Add(1)
		go func() {
			defer s.stopWaiter.Done()
			defer s.removeConn(conn)

			s.serve(ctx, conn)
		}()
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	log := s.log.Named("conn").With(zap.String("remote", conn.RemoteAddr().String()))

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		log.Warn("Failed to set read deadline", zap.Error(err))
	}

	rawReq, err := protocol.ReadLine(bufio.NewReader(conn))
	if err != nil {
		log.Warn("Failed to read client request", zap.Error(err))
		return
	}

	s.recordRequest(string(rawReq))

	req, err := protocol.ParseRequest(rawReq)
	if err != nil {
		log.Warn("Failed to parse client request", zap.Error(err))

		if werr := protocol.WriteError(conn, "malformed request"); werr != nil {
			log.Warn("Failed to reply to malformed request", zap.Error(werr))
		}
		return
	}

	if s.handler == nil {
		return
	}

	if err := s.handler.Handle(ctx, conn, req); err != nil {
		log.Warn("Handler failed",
			zap.String("command", string(req.GetCommand())),
			zap.Error(err))
	}
}

func (s *Server) recordRequest(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, raw)
}

func (s *Server) addConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeConns[conn] = struct{}{}
}

func (s *Server) removeConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeConns[conn]; ok {
		conn.Close()
		delete(s.activeConns, conn)
	}
}
