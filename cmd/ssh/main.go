package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/audio"
	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/draw"
	applog "github.com/tomz197/somanaut/internal/logging"
	"github.com/tomz197/somanaut/internal/loop/client"
	loopconfig "github.com/tomz197/somanaut/internal/loop/config"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/score"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultScoresDir   = "/app/data/scores"
)

// host holds what every SSH session shares.
type host struct {
	lobby   *server.Server
	scores  *score.DirStore
	airdrop *airdrop.Client
	logger  *log.Logger

	mu     sync.RWMutex
	tuning config.Tuning
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	logger := applog.New("ssh", applog.Options{})

	hostAddr := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config", "host", hostAddr, "port", port, "hostKeyPath", hostKeyPath, "workingDir", workingDir)

	h := &host{
		lobby:  server.NewServer(logger.WithPrefix("lobby")),
		scores: score.NewDirStore(config.GetEnv("SCORES_DIR", defaultScoresDir)),
		logger: logger,
		tuning: config.DefaultTuning(),
	}
	if url := config.GetEnv("AIRDROP_URL", ""); url != "" {
		h.airdrop = airdrop.New(url, airdrop.WithLogger(logger.WithPrefix("airdrop")))
	}
	if path := config.GetEnv("TUNING_FILE", ""); path != "" {
		t, err := config.LoadTuning(path)
		if err != nil {
			logger.Fatal("failed to load tuning", "err", err)
		}
		h.tuning = t
		if watcher, err := config.WatchTuning(path); err != nil {
			logger.Warn("tuning hot reload disabled", "err", err)
		} else {
			defer watcher.Close()
			go h.watchTuning(watcher)
		}
	}

	ctx, cancelServer := context.WithCancel(context.Background())
	go h.lobby.Run(ctx)
	logger.Info("game server started")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(hostAddr, port)),
		wish.WithMiddleware(
			h.gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(hostAddr, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Notify players and wait for them to disconnect
	logger.Info("notifying connected players about shutdown", "players", h.lobby.Players())
	h.lobby.Shutdown(15 * time.Second)
	cancelServer()
	logger.Info("game server stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// watchTuning keeps the tuning for new sessions current.
func (h *host) watchTuning(w *config.TuningWatcher) {
	for {
		select {
		case t, ok := <-w.Events:
			if !ok {
				return
			}
			h.mu.Lock()
			h.tuning = t
			h.mu.Unlock()
			h.logger.Info("tuning reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Warn("tuning reload failed", "err", err)
		}
	}
}

func (h *host) currentTuning() config.Tuning {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tuning
}

// gameMiddleware handles SSH sessions and runs the game client.
func (h *host) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		user := sess.User()
		logger := h.logger.With("user", user)
		logger.Info("new game session", "terminal", pty.Term, "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		// Users connecting as their wallet address can claim rewards.
		var wallet string
		if airdrop.IsAddress(user) {
			wallet = user
		}

		tuning := h.currentTuning()
		bell := &audio.Bell{}
		reader := bufio.NewReader(sess)
		c := client.NewClient(h.lobby, reader, sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     displayName(user),
			Logger:       logger,
			Scores:       h.scores.For(user),
			Audio:        bell,
			Bell:         bell,
			Airdrop:      h.airdrop,
			Wallet:       wallet,
			Tuning:       &tuning,
		})
		if err := c.Run(); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// displayName shortens wallet addresses and long names for the hall of fame.
func displayName(user string) string {
	if airdrop.IsAddress(user) {
		return user[:6] + ".." + user[len(user)-4:]
	}
	if r := []rune(user); len(r) > loopconfig.MaxUsernameLen {
		return string(r[:loopconfig.MaxUsernameLen])
	}
	if user == "" {
		return "anonymous"
	}
	return user
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
