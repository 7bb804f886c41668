// Package server runs the idle Minecraft listener the converter keeps alive while it works, and
// holds the world version the converter targets.
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sirupsen/logrus"
)

// Server is a listener that accepts no real traffic: every incoming connection is closed as soon
// as it is accepted.
type Server struct {
	auth Auth
	log  logrus.FieldLogger

	mu       sync.Mutex
	listener *minecraft.Listener
	wg       sync.WaitGroup
}

// Init creates a Server that is not yet listening.
func Init(auth Auth, log logrus.FieldLogger) *Server {
	return &Server{auth: auth, log: log}
}

// Start binds the listener to addr and starts accepting connections in the background.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	cfg := minecraft.ListenConfig{AuthenticationDisabled: s.auth == Offline}
	l, err := cfg.Listen("raknet", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = l
	s.log.WithField("auth", s.auth).Debug("server started")

	s.wg.Add(1)
	go s.accept(l)
	return nil
}

func (s *Server) accept(l *minecraft.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		s.log.WithField("addr", conn.RemoteAddr()).Debug("closing connection")
		_ = conn.Close()
	}
}

// Addr returns the address the server is listening on, or nil if it is not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and waits for the accept loop to return. Calling Stop on a server that
// is not running does nothing.
func (s *Server) Stop() {
	s.mu.Lock()
	l := s.listener
	s.listener = nil
	s.mu.Unlock()
	if l == nil {
		return
	}

	if err := l.Close(); err != nil {
		s.HandleError(fmt.Errorf("close listener: %w", err))
	}
	s.wg.Wait()
	s.log.Debug("server stopped")
}

// HandleError reports an error that does not stop the program.
func (s *Server) HandleError(err error) {
	if err == nil {
		return
	}
	s.log.WithError(err).Error("unhandled error")
}
