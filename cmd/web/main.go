package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/config"
	applog "github.com/tomz197/somanaut/internal/logging"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/net/ws"
	"github.com/tomz197/somanaut/internal/score"
)

const (
	defaultHost      = "0.0.0.0"
	defaultPort      = "8080"
	defaultScoresDir = "/app/data/web-scores"
)

//go:embed index.html
var htmlPage string

// tuningSource serves the current tuning to new sessions.
type tuningSource struct {
	mu     sync.RWMutex
	tuning config.Tuning
}

func (t *tuningSource) get() config.Tuning {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tuning
}

func (t *tuningSource) watch(w *config.TuningWatcher, logger *log.Logger) {
	for {
		select {
		case next, ok := <-w.Events:
			if !ok {
				return
			}
			t.mu.Lock()
			t.tuning = next
			t.mu.Unlock()
			logger.Info("tuning reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("tuning reload failed", "err", err)
		}
	}
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	logger := applog.New("web", applog.Options{})

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	tunings := &tuningSource{tuning: config.DefaultTuning()}
	if path := config.GetEnv("TUNING_FILE", ""); path != "" {
		t, err := config.LoadTuning(path)
		if err != nil {
			logger.Fatal("failed to load tuning", "err", err)
		}
		tunings.tuning = t
		if watcher, err := config.WatchTuning(path); err != nil {
			logger.Warn("tuning hot reload disabled", "err", err)
		} else {
			defer watcher.Close()
			go tunings.watch(watcher, logger)
		}
	}

	lobby := server.NewServer(logger.WithPrefix("lobby"))
	ctx, cancelLobby := context.WithCancel(context.Background())
	go lobby.Run(ctx)

	var claims *airdrop.Client
	if url := config.GetEnv("AIRDROP_URL", ""); url != "" {
		claims = airdrop.New(url, airdrop.WithLogger(logger.WithPrefix("airdrop")))
	}
	scores := score.NewDirStore(config.GetEnv("SCORES_DIR", defaultScoresDir))

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)
		fmt.Fprint(w, page)
	})
	mux.Handle("/ws", ws.NewHandler(ws.HandlerConfig{
		Logger:  logger.WithPrefix("ws"),
		Lobby:   lobby,
		Airdrop: claims,
		Tuning:  tunings.get,
		Scores:  func(player string) sim.ScoreStore { return scores.For(player) },
		Seed:    int64(config.GetEnvInt("GAME_SEED", 0)),
	}))

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "url", "http://"+srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server", "players", lobby.Players())
	lobby.Shutdown(15 * time.Second)
	cancelLobby()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}
