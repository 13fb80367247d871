package sim

import (
	"time"

	"github.com/tomz197/somanaut/internal/object"
)

// Snapshot is an immutable copy of the session state for rendering.
// Readers must not modify it.
type Snapshot struct {
	Seq      uint64 // Increments with every published snapshot
	Phase    Phase
	Loading  bool // Start delay running
	Paused   bool // Suspended by the orientation collaborator
	Launched bool

	Score      int
	Reward     float64
	HighScores []int

	Elapsed   time.Duration
	Remaining time.Duration
	Duration  time.Duration

	Background       float64
	BackgroundPhase  int     // 1..3
	GradientProgress float64 // 0..100, only in phase 3
	StationVisible   bool

	Layout   object.Layout // Compact is the session's latched density
	Rocket   object.Rocket
	Junk     []object.Junk
	Texts    []object.FloatingText
	Confetti []object.Confetti
}

// Background phase thresholds in scroll units.
const (
	backgroundPhase2    = 800
	backgroundPhase3    = 1200
	gradientStart       = 1350
	gradientSpan        = 1000
	gradientMaxProgress = 100
)

// BackgroundPhase partitions the scroll offset into three visual phases.
func BackgroundPhase(offset float64) int {
	switch {
	case offset < backgroundPhase2:
		return 1
	case offset < backgroundPhase3:
		return 2
	default:
		return 3
	}
}

// GradientProgress is the percentage of the phase 3 color transition.
func GradientProgress(offset float64) float64 {
	if BackgroundPhase(offset) != 3 || offset <= gradientStart {
		return 0
	}
	return min(gradientMaxProgress, (offset-gradientStart)/gradientSpan*100)
}

// publishLocked stores a fresh snapshot. Must be called with s.mu held.
func (s *Simulation) publishLocked() *Snapshot {
	s.seq++
	elapsed := s.tuning.Elapsed(s.ticks)
	duration := s.tuning.SessionDuration
	snap := &Snapshot{
		Seq:      s.seq,
		Phase:    s.phase,
		Loading:  s.starting,
		Paused:   s.paused,
		Launched: s.launched,

		Score:      s.score,
		Reward:     s.reward,
		HighScores: slicesClone(s.highScores),

		Elapsed:   elapsed,
		Remaining: max(0, duration-elapsed),
		Duration:  duration,

		Background:       s.background,
		BackgroundPhase:  BackgroundPhase(s.background),
		GradientProgress: GradientProgress(s.background),
		StationVisible:   s.launched && elapsed > duration-s.tuning.StationLead,

		Layout:   s.sessionLayout(),
		Rocket:   s.rocket,
		Junk:     slicesClone(s.junk),
		Texts:    slicesClone(s.texts),
		Confetti: slicesClone(s.confetti),
	}
	s.snapshot.Store(snap)
	return snap
}

// slicesClone copies src into a fresh slice; empty input yields a non-nil
// empty slice so encoders emit [] instead of null.
func slicesClone[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}
