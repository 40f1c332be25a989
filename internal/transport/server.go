package transport

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// Server binds a TCP listener and keeps accepted connections in a named
// cache so a scenario can address a specific peer by alias, or fall
// back to "whatever was accepted most recently" (spec.md §5). Per the
// single-threaded cooperative model spec.md §5 describes, there is no
// background accept loop: a caller drives accepts explicitly via
// AcceptConnection, same as it drives reads via Connection.ReadMessage.
type Server struct {
	listener net.Listener
	logger   *zap.SugaredLogger
	cache    *connectionCache

	defaultTimeout time.Duration
	bufSize        int
}

// NewServer builds a TCP server. defaultTimeout seeds every accepted
// connection's BufferedStream fallback timeout.
func NewServer(logger *zap.SugaredLogger, defaultTimeout time.Duration) *Server {
	return &Server{
		logger:         logger,
		cache:          newConnectionCache(),
		defaultTimeout: defaultTimeout,
		bufSize:        TCPReceiveBufferSize,
	}
}

// Start binds the listening socket. It does not accept any connections
// itself — call AcceptConnection to pull one in.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = l
	s.logger.Infof("Listening on %s", addr)
	return nil
}

// AcceptConnection waits for the next inbound connection and registers
// it under alias (or a generated "connection<n>" if alias is empty),
// returning the alias actually used.
func (s *Server) AcceptConnection(alias string, timeout time.Duration) (string, error) {
	if tcpListener, ok := s.listener.(*net.TCPListener); ok {
		if err := tcpListener.SetDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}
	conn, err := s.listener.Accept()
	if err != nil {
		return "", fmt.Errorf("accept_connection: %w", err)
	}
	c := newConnection(conn, s.bufSize, s.defaultTimeout)
	used := s.cache.add(alias, c)
	s.logger.Infof("Accepted connection %s as %s", c.RemoteAddr(), used)
	return used, nil
}

// CloseConnection closes and forgets the aliased connection. Symmetric
// with AcceptConnection — the open question spec.md §9 flags as
// previously unimplemented.
func (s *Server) CloseConnection(alias string) error {
	conn, ok := s.cache.remove(alias)
	if !ok {
		return fmt.Errorf("close_connection: no such connection %q", alias)
	}
	s.logger.Infof("Closing connection %s", alias)
	return conn.Close()
}

// Connection returns the cached connection for alias, or the most
// recently accepted one when alias is empty.
func (s *Server) Connection(alias string) (*Connection, bool) {
	return s.cache.get(alias)
}

// ConnectionCount reports how many connections are currently cached.
func (s *Server) ConnectionCount() int {
	return s.cache.count()
}

// Stop closes the listener and every cached connection.
func (s *Server) Stop(timeout time.Duration) error {
	if s.listener != nil {
		s.listener.Close()
	}
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	for alias, conn := range s.cache.byAlias {
		conn.Close()
		delete(s.cache.byAlias, alias)
	}
	return nil
}
