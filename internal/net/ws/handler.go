// Package ws serves browser game sessions over websockets. Each connection
// owns one simulation ticked on the server; the browser only renders state
// and plays the sound cues it is sent.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/audio"
	"github.com/tomz197/somanaut/internal/config"
	loopconfig "github.com/tomz197/somanaut/internal/loop/config"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/net/protocol"
	"github.com/tomz197/somanaut/internal/score"
)

// HandlerConfig wires a Handler to the rest of the server. Only Lobby is
// required.
type HandlerConfig struct {
	Logger  *log.Logger
	Lobby   server.Lobby
	Airdrop *airdrop.Client // nil disables claims

	// Tuning returns the tuning for new sessions. nil uses the defaults.
	Tuning func() config.Tuning
	// Scores returns the high-score store for a player. nil keeps scores in
	// memory for the lifetime of the connection.
	Scores func(player string) sim.ScoreStore
	// Seed fixes every session's random source. 0 seeds from the clock.
	Seed int64
}

type Handler struct {
	cfg      HandlerConfig
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("ws")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &Handler{
		cfg:      cfg,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	codec := protocol.CodecByName(r.URL.Query().Get("codec"))
	name := playerName(r.URL.Query().Get("name"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	handle := h.cfg.Lobby.RegisterClient(name)
	defer h.cfg.Lobby.UnregisterClient(handle.ID)

	logger := h.logger.With("client", handle.ID, "user", name)
	logger.Info("session connected", "codec", codec.Name(), "remote", r.RemoteAddr)

	s := h.newSession(conn, codec, handle, name, logger)
	err = s.run(r.Context())
	switch {
	case err == nil, errors.Is(err, context.Canceled), websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		logger.Info("session closed")
	default:
		logger.Warn("session ended", "err", err)
	}
}

func (h *Handler) newSession(conn *websocket.Conn, codec protocol.Codec, handle *server.ClientHandle, name string, logger *log.Logger) *session {
	tuning := config.DefaultTuning()
	if h.cfg.Tuning != nil {
		tuning = h.cfg.Tuning()
	}
	var store sim.ScoreStore = &score.MemoryStore{}
	if h.cfg.Scores != nil {
		store = h.cfg.Scores(name)
	}

	rec := &audio.Recorder{}
	game := sim.New(sim.Options{
		Tuning: &tuning,
		Seed:   h.cfg.Seed,
		Audio:  rec,
		Scores: store,
		Logger: logger,
	})

	return &session{
		conn:    conn,
		codec:   codec,
		lobby:   h.cfg.Lobby,
		handle:  handle,
		name:    name,
		logger:  logger,
		airdrop: h.cfg.Airdrop,
		game:    game,
		sounds:  rec,
		inbox:   make(chan inbound, loopconfig.SocketSendBuffer),
		claims:  make(chan protocol.Claim, 1),
	}
}

// playerName trims and bounds a requested display name.
func playerName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "guest"
	}
	if r := []rune(name); len(r) > loopconfig.MaxUsernameLen {
		name = string(r[:loopconfig.MaxUsernameLen])
	}
	return name
}

// Compile-time check that Handler is an http.Handler.
var _ http.Handler = (*Handler)(nil)

// writeFrame sends one encoded frame with a write deadline.
func writeFrame(conn *websocket.Conn, codec protocol.Codec, data []byte) error {
	msgType := websocket.TextMessage
	if codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	_ = conn.SetWriteDeadline(time.Now().Add(loopconfig.SocketWriteWait))
	return conn.WriteMessage(msgType, data)
}
