// Package sim owns one game session: phases, spawning, motion, collisions,
// scoring and effects. All mutation happens under a single lock per call;
// renderers read immutable snapshots.
package sim

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/object"
)

// Input is the per-frame control state.
type Input = object.Input

// Options configures a Simulation. Zero values are usable.
type Options struct {
	Tuning *config.Tuning // nil uses config.DefaultTuning
	Seed   int64          // Seeds the default random source; 0 seeds from the clock
	Rand   object.Rand    // Overrides Seed when set
	Audio  Audio
	Scores ScoreStore
	Logger *log.Logger

	// OnChange is called once after every call that changed state, outside
	// the simulation lock.
	OnChange func(*Snapshot)

	Layout     object.Layout
	SkipSplash bool // Start at home instead of loading
}

// Simulation is a single-owner game session.
type Simulation struct {
	mu       sync.Mutex
	tuning   config.Tuning
	pending  *config.Tuning // Applied at the next reset
	rnd      object.Rand
	audio    Audio
	scores   ScoreStore
	logger   *log.Logger
	onChange func(*Snapshot)

	phase       Phase
	splashLeft  time.Duration
	starting    bool
	startLeft   time.Duration
	blocked     bool // Orientation collaborator asserts pause
	paused      bool
	layout      object.Layout
	compact     bool // Latched at session start
	launched    bool
	score       int
	reward      float64
	highScores  []int
	ticks       uint64
	background  float64
	rocket      object.Rocket
	junk        []object.Junk
	spawned     []object.Junk
	texts       []object.FloatingText
	pendingText []object.FloatingText
	confetti    []object.Confetti
	nextID      uint64
	seq         uint64

	snapshot atomic.Pointer[Snapshot]
}

// outbox collects side effects produced under the lock. They are dispatched
// after the lock is released so collaborators cannot stall a tick.
type outbox struct {
	changed    bool
	sounds     []Sound
	save       []int
	loadScores bool
}

// New creates a simulation in the loading phase (or home with SkipSplash).
func New(opts Options) *Simulation {
	tuning := config.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	rnd := opts.Rand
	if rnd == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rnd = rand.New(rand.NewSource(seed))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("sim")
	}

	s := &Simulation{
		tuning:     tuning,
		rnd:        rnd,
		audio:      opts.Audio,
		scores:     opts.Scores,
		logger:     logger,
		onChange:   opts.OnChange,
		phase:      PhaseLoading,
		splashLeft: tuning.SplashDelay,
		layout:     opts.Layout,
		compact:    opts.Layout.Compact,
		highScores: []int{},
	}
	s.resetLocked()
	if opts.SkipSplash {
		s.phase = PhaseHome
	}
	s.publishLocked()
	if opts.SkipSplash {
		s.loadHighScores()
	}
	return s
}

// Snapshot returns the latest published state. Never nil.
func (s *Simulation) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Frame advances timers by dt and, while playing and not paused, runs one
// simulation step. Hosts call it once per displayed frame.
func (s *Simulation) Frame(in Input, dt time.Duration) {
	s.mu.Lock()
	var out outbox
	s.frameLocked(in, dt, &out)
	s.finishLocked(&out)
}

// Step runs exactly one simulation tick without advancing frame timers.
func (s *Simulation) Step(in Input) {
	s.mu.Lock()
	var out outbox
	s.stepLocked(in, &out)
	s.finishLocked(&out)
}

// Start begins a new session after the start delay. From a finished
// session it first returns to the menu.
func (s *Simulation) Start() {
	s.mu.Lock()
	var out outbox
	if s.phase.Ended() {
		s.toHomeLocked(&out)
	}
	if s.phase == PhaseHome && !s.starting {
		s.starting = true
		s.startLeft = s.tuning.StartDelay
		out.changed = true
		if s.startLeft <= 0 {
			s.beginLocked()
		}
	}
	s.finishLocked(&out)
}

// ReturnToMenu abandons the session and resets to home. Calling it twice
// leaves the same state as calling it once.
func (s *Simulation) ReturnToMenu() {
	s.mu.Lock()
	var out outbox
	if s.phase != PhaseLoading {
		s.toHomeLocked(&out)
	}
	s.finishLocked(&out)
}

// SetLayout updates the container dimensions and density. The density of a
// running session stays as it was when the session started.
func (s *Simulation) SetLayout(l object.Layout) {
	s.mu.Lock()
	var out outbox
	if l != s.layout {
		s.layout = l
		if s.phase != PhasePlaying {
			s.compact = l.Compact
			s.rocket = object.NewRocket(s.tuning.StartX, s.tuning.Layout(s.compact))
		}
		s.rocket.Clamp(s.sessionLayout())
		out.changed = true
	}
	s.finishLocked(&out)
}

// SetOrientationBlocked asserts or clears the external pause condition.
// Only a running session is paused; clearing always resumes.
func (s *Simulation) SetOrientationBlocked(blocked bool) {
	s.mu.Lock()
	var out outbox
	s.blocked = blocked
	paused := blocked && s.phase == PhasePlaying
	if paused != s.paused {
		s.paused = paused
		out.changed = true
	}
	s.finishLocked(&out)
}

// SetTuning replaces the tuning from the next reset on.
func (s *Simulation) SetTuning(t config.Tuning) {
	s.mu.Lock()
	s.pending = &t
	s.mu.Unlock()
}

func (s *Simulation) frameLocked(in Input, dt time.Duration, out *outbox) {
	switch s.phase {
	case PhaseLoading:
		s.splashLeft -= dt
		if s.splashLeft <= 0 {
			s.phase = PhaseHome
			out.changed = true
			out.loadScores = true
		}
	case PhaseHome:
		if !s.starting {
			return
		}
		s.startLeft -= dt
		if s.startLeft <= 0 {
			s.beginLocked()
		}
		out.changed = true
	case PhasePlaying:
		s.stepLocked(in, out)
	case PhaseGameOver, PhaseWin:
		if in.Cancel {
			s.toHomeLocked(out)
		}
	}
}

// stepLocked runs one tick in the fixed order: cancel, launch, motion,
// spawn, entity pass, effect decay, win check. A paused session ignores
// every input, cancel included.
func (s *Simulation) stepLocked(in Input, out *outbox) {
	if s.phase != PhasePlaying {
		return
	}
	if s.paused {
		return
	}
	if in.Cancel {
		s.toHomeLocked(out)
		return
	}
	out.changed = true

	if in.Launch && !s.launched {
		s.launched = true
	}

	ctx := s.updateContextLocked(in)
	if s.launched {
		s.rocket.Update(ctx)
		s.background += s.tuning.BackgroundStep
		s.ticks++
		ctx.Elapsed = s.tuning.Elapsed(s.ticks)
	}

	object.JunkSpawner{}.Update(ctx)
	s.junk = append(s.junk, s.spawned...)
	clear(s.spawned)
	s.spawned = s.spawned[:0]

	if s.collideLocked(ctx, out) {
		return
	}
	s.decayEffectsLocked(ctx)

	if s.launched && ctx.Elapsed >= s.tuning.SessionDuration {
		s.endLocked(PhaseWin, out)
	}
}

func (s *Simulation) updateContextLocked(in Input) object.UpdateContext {
	return object.UpdateContext{
		Input:    in,
		Layout:   s.sessionLayout(),
		Tuning:   &s.tuning,
		Rand:     s.rnd,
		Elapsed:  s.tuning.Elapsed(s.ticks),
		Launched: s.launched,
		Spawner:  (*spawnQueue)(s),
	}
}

func (s *Simulation) sessionLayout() object.Layout {
	return object.Layout{Compact: s.compact, Width: s.layout.Width, Height: s.layout.Height}
}

// beginLocked enters the playing phase with fresh session state.
func (s *Simulation) beginLocked() {
	s.starting = false
	s.resetLocked()
	s.compact = s.layout.Compact
	s.rocket = object.NewRocket(s.tuning.StartX, s.tuning.Layout(s.compact))
	s.rocket.Clamp(s.sessionLayout())
	s.phase = PhasePlaying
	s.paused = s.blocked
	s.logger.Debug("session started", "compact", s.compact, "width", s.layout.Width, "height", s.layout.Height)
}

// endLocked finishes the session with the given phase.
func (s *Simulation) endLocked(phase Phase, out *outbox) {
	s.phase = phase
	s.paused = false
	s.reward = Reward(s.score)
	s.highScores = InsertHighScore(s.highScores, s.score, config.HighScoreLimit)
	out.save = slicesClone(s.highScores)
	out.changed = true
	switch phase {
	case PhaseWin:
		out.sounds = append(out.sounds, SoundVictory)
		s.confetti = append(s.confetti, object.Burst(s.tuning.ConfettiCount, s.tuning.ConfettiColors, s.rnd, s.nextIDLocked)...)
	case PhaseGameOver:
		out.sounds = append(out.sounds, SoundCollision)
	}
	s.logger.Info("session ended", "phase", phase, "score", s.score, "reward", s.reward)
}

// toHomeLocked resets all session state and enters the menu.
func (s *Simulation) toHomeLocked(out *outbox) {
	s.resetLocked()
	s.phase = PhaseHome
	s.starting = false
	out.changed = true
	out.loadScores = true
}

// resetLocked clears session state. Layout, high scores and phase are kept.
func (s *Simulation) resetLocked() {
	if s.pending != nil {
		s.tuning = *s.pending
		s.pending = nil
	}
	s.paused = false
	s.launched = false
	s.score = 0
	s.reward = 0
	s.ticks = 0
	s.background = 0
	s.compact = s.layout.Compact
	s.rocket = object.NewRocket(s.tuning.StartX, s.tuning.Layout(s.compact))
	s.rocket.Clamp(s.sessionLayout())
	s.junk = s.junk[:0]
	s.spawned = s.spawned[:0]
	s.texts = s.texts[:0]
	s.pendingText = s.pendingText[:0]
	s.confetti = s.confetti[:0]
	s.nextID = 0
}

func (s *Simulation) nextIDLocked() uint64 {
	s.nextID++
	return s.nextID
}

// spawnQueue exposes the simulation as an object.Spawner for the duration of
// a locked step.
type spawnQueue Simulation

func (q *spawnQueue) NextID() uint64 {
	return (*Simulation)(q).nextIDLocked()
}

func (q *spawnQueue) Spawn(j object.Junk) {
	q.spawned = append(q.spawned, j)
}

// finishLocked publishes, unlocks and dispatches side effects.
func (s *Simulation) finishLocked(out *outbox) {
	var snap *Snapshot
	if out.changed {
		snap = s.publishLocked()
	}
	audio, store, notify := s.audio, s.scores, s.onChange
	s.mu.Unlock()

	if audio != nil {
		for _, snd := range out.sounds {
			audio.Play(snd)
		}
	}
	if out.save != nil && store != nil {
		if err := store.Save(out.save); err != nil {
			s.logger.Error("save high scores", "err", err)
		}
	}
	if out.loadScores {
		s.loadHighScores()
		return // loadHighScores notifies with the updated list
	}
	if snap != nil && notify != nil {
		notify(snap)
	}
}

// loadHighScores reads the persisted list outside the lock and publishes it.
func (s *Simulation) loadHighScores() {
	var scores []int
	if s.scores != nil {
		loaded, err := s.scores.Load()
		if err != nil {
			s.logger.Warn("load high scores", "err", err)
		} else {
			scores = loaded
		}
	}

	s.mu.Lock()
	if s.scores != nil {
		s.highScores = NormalizeHighScores(scores, config.HighScoreLimit)
	}
	snap := s.publishLocked()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}
