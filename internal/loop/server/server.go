package server

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/somanaut/internal/loop/config"
)

// Lobby is the interface sessions use to talk to the server. Decouples the
// terminal and browser sessions from the concrete Server, enabling testing.
type Lobby interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	ReportScore(clientID int, score int)
	TopScores() []TopScoreEntry
	Players() int
}

// Server tracks connected sessions and keeps the server-wide hall of fame.
// Every session runs its own simulation; the server only sees finished
// scores.
type Server struct {
	clients      map[int]*ClientHandle
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	scoreCh      chan ClientScore
	mu           sync.RWMutex
	logger       *log.Logger

	board     leaderboard
	topScores atomic.Pointer[[]TopScoreEntry]
}

// Compile-time check that Server implements Lobby.
var _ Lobby = (*Server)(nil)

// ClientHandle represents a session's registration with the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client (shutdown)
}

// ClientScore is a finished session reported by a client.
type ClientScore struct {
	ClientID int
	Score    int
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// NewServer creates a new server. A nil logger uses the default one.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default().WithPrefix("server")
	}
	s := &Server{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		scoreCh:      make(chan ClientScore, 64),
		logger:       logger,
		board:        leaderboard{limit: config.HallOfFameSize},
	}
	empty := []TopScoreEntry{}
	s.topScores.Store(&empty)
	return s
}

// Run processes registrations and reported scores. Blocks until the context
// is cancelled.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("client registered", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
			s.logger.Debug("client unregistered", "id", clientID)
		case cs := <-s.scoreCh:
			s.recordScore(cs)
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.Players() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// ReportScore submits a finished session's score for the hall of fame.
func (s *Server) ReportScore(clientID int, score int) {
	select {
	case s.scoreCh <- ClientScore{ClientID: clientID, Score: score}:
	default:
		// Score channel full, drop report
	}
}

// TopScores returns the current hall of fame, best first.
func (s *Server) TopScores() []TopScoreEntry {
	return *s.topScores.Load()
}

// Players returns the number of registered clients.
func (s *Server) Players() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) recordScore(cs ClientScore) {
	s.mu.RLock()
	handle, ok := s.clients[cs.ClientID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	if !s.board.insert(TopScoreEntry{Username: handle.Username, Score: cs.Score, clientID: cs.ClientID}) {
		return
	}
	top := slices.Clone(s.board.entries)
	s.topScores.Store(&top)
	s.logger.Info("hall of fame updated", "user", handle.Username, "score", cs.Score)
}
