package client

import (
	"bufio"
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/somanaut/internal/airdrop"
	"github.com/tomz197/somanaut/internal/audio"
	gameconfig "github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/draw"
	"github.com/tomz197/somanaut/internal/input"
	"github.com/tomz197/somanaut/internal/loop/config"
	"github.com/tomz197/somanaut/internal/loop/server"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/object"
)

const claimTimeout = 20 * time.Second

// Client runs one terminal session: it owns a simulation, feeds it the
// player's keys and renders its snapshots.
type Client struct {
	lobby        server.Lobby
	handle       *server.ClientHandle
	state        *ClientState
	game         *sim.Simulation
	audio        *audio.Mutable
	bell         *audio.Bell
	airdrop      *airdrop.Client
	tunings      <-chan gameconfig.Tuning
	tuning       gameconfig.Tuning // Host-side copy for station timing and the win animation
	logger       *log.Logger
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	reader       *bufio.Reader
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	claims       chan claimResult
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Logger       *log.Logger

	Scores sim.ScoreStore
	Audio  sim.Audio   // Sound output; nil plays nothing
	Bell   *audio.Bell // Flushed to the terminal every frame when set

	Airdrop *airdrop.Client // nil disables claims
	Wallet  string          // Destination for claims

	Tuning  *gameconfig.Tuning
	Tunings <-chan gameconfig.Tuning // Reloaded tunings, applied at the next reset
	Seed    int64
}

type claimResult struct {
	res airdrop.Result
	err error
}

// NewClient creates a new client registered with the given lobby.
func NewClient(lobby server.Lobby, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("client")
	}

	handle := lobby.RegisterClient(opts.Username)
	state := NewClientState()
	state.wallet = opts.Wallet

	tuning := gameconfig.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	mutable := audio.NewMutable(opts.Audio)
	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	layout := layoutFor(renderWidth, renderHeight)

	game := sim.New(sim.Options{
		Tuning: &tuning,
		Seed:   opts.Seed,
		Audio:  mutable,
		Scores: opts.Scores,
		Logger: logger,
		Layout: layout,
	})

	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, layout.Width, layout.Height)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	return &Client{
		lobby:        lobby,
		handle:       handle,
		state:        state,
		game:         game,
		audio:        mutable,
		bell:         opts.Bell,
		airdrop:      opts.Airdrop,
		tunings:      opts.Tunings,
		tuning:       tuning,
		logger:       logger.With("client", handle.ID),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		reader:       r,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		claims:       make(chan claimResult, 1),
	}
}

// Run starts the client loop. Blocks until the player quits, the input ends
// or the lobby shuts the session down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.lobby.UnregisterClient(c.handle.ID)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processServerEvents()
		c.processClaims()
		c.processTunings()
		c.updateScreen()

		if c.state.Screen == ScreenShutdown {
			c.updateShutdownState()
		} else {
			c.game.Frame(c.state.frameInput(), c.state.delta)
		}
		c.observe(c.game.Snapshot())
		c.animateConfetti()

		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads the keyboard and turns presses into simulation input
// and menu actions.
func (c *Client) processInput() {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	if len(in.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit || c.inputStream.Closed() {
		c.state.Running = false
		return
	}
	if c.state.Screen == ScreenShutdown {
		return
	}

	edges := c.state.keys.press(in)
	snap := c.game.Snapshot()
	if edges.mute {
		c.state.muted = c.audio.Toggle()
	}

	switch {
	case snap.Phase == sim.PhaseHome:
		if edges.enter || edges.space {
			input.ResetKeyInput(c.inputStream)
			c.game.Start()
		}
	case snap.Phase.Ended():
		switch {
		case edges.claim:
			c.claim(snap)
		case edges.enter:
			input.ResetKeyInput(c.inputStream)
			c.game.Start()
		case edges.escape:
			c.game.ReturnToMenu()
		}
	}
}

// processServerEvents handles events from the lobby.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.state.Screen = ScreenShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// processClaims picks up finished airdrop requests.
func (c *Client) processClaims() {
	select {
	case r := <-c.claims:
		c.state.claiming = false
		if r.err != nil {
			c.state.claimMsg = "Claim failed: " + r.err.Error()
			c.logger.Warn("claim failed", "err", r.err)
			return
		}
		c.state.claimed = true
		c.state.claimMsg = "Reward sent! tx " + shortHash(r.res.TransactionHash)
		c.logger.Info("claim sent", "tx", r.res.TransactionHash)
	default:
	}
}

// processTunings hands reloaded tunings to the simulation.
func (c *Client) processTunings() {
	if c.tunings == nil {
		return
	}
	for {
		select {
		case t, ok := <-c.tunings:
			if !ok {
				c.tunings = nil
				return
			}
			c.game.SetTuning(t)
			c.tuning = t
			c.logger.Info("tuning reloaded", "tick_rate", t.TickRate)
		default:
			return
		}
	}
}

// claim starts an airdrop of the finished session's reward.
func (c *Client) claim(snap *sim.Snapshot) {
	switch {
	case c.airdrop == nil:
		c.state.claimMsg = "Claims are disabled here"
		return
	case c.state.claimed:
		c.state.claimMsg = "Reward already claimed"
		return
	case c.state.claiming:
		return
	case !airdrop.IsAddress(c.state.wallet):
		c.state.claimMsg = "No wallet: connect as a 0x... user to claim"
		return
	}

	c.state.claiming = true
	c.state.claimMsg = "Claiming..."
	wallet, amount := c.state.wallet, snap.Reward
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), claimTimeout)
		defer cancel()
		res, err := c.airdrop.Claim(ctx, wallet, amount)
		c.claims <- claimResult{res: res, err: err}
	}()
}

// observe reacts to phase transitions in the latest snapshot.
func (c *Client) observe(snap *sim.Snapshot) {
	if snap.Phase.Ended() && !c.state.lastPhase.Ended() {
		c.lobby.ReportScore(c.handle.ID, snap.Score)
		c.state.claimed = false
		c.state.claimMsg = ""
		c.logger.Info("session finished", "phase", snap.Phase, "score", snap.Score)
	}
	switch {
	case snap.Phase == sim.PhaseWin && c.state.lastPhase != sim.PhaseWin:
		// The simulation stops stepping once the session is won, so the
		// burst is animated on a local copy.
		c.state.confetti = slices.Clone(snap.Confetti)
	case snap.Phase != sim.PhaseWin:
		c.state.confetti = nil
	}
	c.state.lastPhase = snap.Phase
	c.state.snap = snap
}

// animateConfetti advances the local confetti copy by one tick.
func (c *Client) animateConfetti() {
	if len(c.state.confetti) == 0 {
		return
	}
	ctx := object.UpdateContext{Layout: c.state.snap.Layout, Tuning: &c.tuning}
	c.state.confetti = object.Advance(c.state.confetti, ctx)
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)

	layout := layoutFor(renderWidth, renderHeight)
	c.canvas.SetLogicalSize(layout.Width, layout.Height)
	c.game.SetLayout(layout)
	c.game.SetOrientationBlocked(tooSmall(termWidth, termHeight))
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// layoutFor maps a render area to container pixels. Narrow terminals play
// the compact layout.
func layoutFor(cols, rows int) object.Layout {
	return object.Layout{
		Compact: cols < config.CompactCols,
		Width:   float64(max(cols, 1) * config.CellPixelWidth),
		Height:  float64(max(rows, 1) * config.CellPixelHeight),
	}
}

// tooSmall reports whether the terminal cannot show a playable area. Play
// pauses until it is enlarged.
func tooSmall(termWidth, termHeight int) bool {
	return termWidth < config.MinTermWidth || termHeight < config.MinTermHeight
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "..." + h[len(h)-4:]
}
