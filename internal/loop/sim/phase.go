package sim

// Phase is the session state machine position.
type Phase int

const (
	PhaseLoading  Phase = iota // Splash screen
	PhaseHome                  // Menu, high scores
	PhasePlaying               // Session running
	PhaseGameOver              // Hit a hazard
	PhaseWin                   // Survived the full session
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseHome:
		return "home"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "gameOver"
	case PhaseWin:
		return "win"
	default:
		return "unknown"
	}
}

// Ended reports whether the phase is a finished session.
func (p Phase) Ended() bool {
	return p == PhaseGameOver || p == PhaseWin
}

// Sound is a fire-and-forget audio cue.
type Sound int

const (
	SoundCollect Sound = iota
	SoundCollision
	SoundVictory
)

func (s Sound) String() string {
	switch s {
	case SoundCollect:
		return "collect"
	case SoundCollision:
		return "collision"
	case SoundVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// Audio plays sound cues. Play must not block.
type Audio interface {
	Play(Sound)
}

// ScoreStore persists the high-score list.
type ScoreStore interface {
	Load() ([]int, error)
	Save(scores []int) error
}
