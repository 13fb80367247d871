package client

import (
	"time"

	"github.com/tomz197/somanaut/internal/input"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/object"
)

// Screen is what the client shows on top of the simulation.
type Screen int

const (
	ScreenGame     Screen = iota // Whatever the simulation phase calls for
	ScreenShutdown               // Server is shutting down
)

// ClientState holds per-connection state that is not part of the
// simulation: key edges, claim progress and screen bookkeeping.
type ClientState struct {
	Input   input.Input
	Screen  Screen
	Running bool // Client loop running

	snap      *sim.Snapshot // Latest snapshot drawn
	lastPhase sim.Phase
	keys      keyLatch
	confetti  []object.Confetti // Win burst, animated locally

	muted    bool
	wallet   string
	claiming bool
	claimed  bool // One claim per finished session
	claimMsg string

	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	// Previous frame's view, to detect when a full clear is needed.
	prevView    view
	wasInactive bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:  ScreenGame,
		Running: true,
	}
}

// frameInput maps the held keys to simulation controls.
func (s *ClientState) frameInput() sim.Input {
	return sim.Input{
		Left:   s.Input.Left,
		Right:  s.Input.Right,
		Launch: s.Input.Space,
		Cancel: s.Input.Escape,
	}
}

// keyEdges are keys that went down this frame.
type keyEdges struct {
	space, enter, escape, mute, claim bool
}

// keyLatch turns held-key state into one-shot presses so a key repeat does
// not toggle mute or fire a claim every frame.
type keyLatch struct {
	prev keyEdges
}

func (l *keyLatch) press(in input.Input) keyEdges {
	now := keyEdges{
		space:  in.Space,
		enter:  in.Enter,
		escape: in.Escape,
		mute:   in.Mute,
		claim:  in.Claim,
	}
	edges := keyEdges{
		space:  now.space && !l.prev.space,
		enter:  now.enter && !l.prev.enter,
		escape: now.escape && !l.prev.escape,
		mute:   now.mute && !l.prev.mute,
		claim:  now.claim && !l.prev.claim,
	}
	l.prev = now
	return edges
}
