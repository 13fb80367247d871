package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/audio"
	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/logging"
	"github.com/tomz197/somanaut/internal/loop"
	"github.com/tomz197/somanaut/internal/loop/client"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/score"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Log lines would corrupt the raw screen, so they only go to LOG_FILE.
	logger := logging.Discard()
	if f, ok := logging.File(); ok {
		defer f.Close()
		logger = logging.New("game", logging.Options{Output: f})
	}

	tuning := config.DefaultTuning()
	tuningPath := config.GetEnv("TUNING_FILE", "")
	var tunings <-chan config.Tuning
	if tuningPath != "" {
		t, err := config.LoadTuning(tuningPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		tuning = t

		watcher, err := config.WatchTuning(tuningPath)
		if err != nil {
			logger.Warn("tuning hot reload disabled", "err", err)
		} else {
			defer watcher.Close()
			tunings = watcher.Events
			go func() {
				for err := range watcher.Errors {
					logger.Warn("tuning reload failed", "err", err)
				}
			}()
		}
	}

	speaker := audio.NewSpeaker(0.5)
	var sound sim.Audio = speaker
	if err := speaker.Initialize(); err != nil {
		logger.Warn("audio disabled", "err", err)
		sound = audio.Nop{}
	} else {
		defer speaker.Close()
	}

	var claims *airdrop.Client
	if url := config.GetEnv("AIRDROP_URL", ""); url != "" {
		claims = airdrop.New(url, airdrop.WithLogger(logger))
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	err = loop.Run(ctx, reader, os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", "player"),
		Logger:   logger,
		Scores:   score.NewFileStore(config.GetEnv("SCORES_PATH", defaultScoresPath())),
		Audio:    sound,
		Airdrop:  claims,
		Wallet:   config.GetEnv("WALLET_ADDRESS", ""),
		Tuning:   &tuning,
		Tunings:  tunings,
		Seed:     int64(config.GetEnvInt("GAME_SEED", 0)),
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func defaultScoresPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "somanaut-scores.json"
	}
	return filepath.Join(dir, "somanaut", "scores.json")
}
