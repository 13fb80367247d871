package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring. These are fixed: the reward formula and the point values are part
// of the claim contract with the airdrop service and are not tunable.
const (
	ScoreMate      = 20
	ScoreEmpanada  = 30
	RewardDivisor  = 100.0
	HighScoreLimit = 5
)

// ErrInvalidTuning is returned by Validate for unusable tuning values.
var ErrInvalidTuning = errors.New("invalid tuning")

// LayoutTuning holds the values that differ between the compact and the full
// layout. Sizes and paddings are in container pixels, speeds in percent of the
// container width per tick.
type LayoutTuning struct {
	RocketWidth  float64 `yaml:"rocket_width"`
	RocketHeight float64 `yaml:"rocket_height"`
	RocketBottom float64 `yaml:"rocket_bottom"`
	RocketSpeed  float64 `yaml:"rocket_speed"`
	RocketPad    float64 `yaml:"rocket_pad"`
	JunkSize     float64 `yaml:"junk_size"`
	ItemSize     float64 `yaml:"item_size"`
	JunkPad      float64 `yaml:"junk_pad"`
	ItemPad      float64 `yaml:"item_pad"`
	ItemBuffer   float64 `yaml:"item_buffer"` // extra leniency for collectibles
}

// Tuning centralizes all tunable gameplay parameters.
type Tuning struct {
	TickRate        int           `yaml:"tick_rate"`
	SplashDelay     time.Duration `yaml:"splash_delay"`
	StartDelay      time.Duration `yaml:"start_delay"`
	SessionDuration time.Duration `yaml:"session_duration"`
	SpawnGrace      time.Duration `yaml:"spawn_grace"`
	StationLead     time.Duration `yaml:"station_lead"` // station shows this long before the end

	SpawnChance  float64 `yaml:"spawn_chance"`
	HazardCutoff float64 `yaml:"hazard_cutoff"` // kind draws above this spawn junk
	MateCutoff   float64 `yaml:"mate_cutoff"`   // second draws above this spawn mate
	SpawnY       float64 `yaml:"spawn_y"`
	SpawnSpan    float64 `yaml:"spawn_span"`
	FallStep     float64 `yaml:"fall_step"`
	ExitY        float64 `yaml:"exit_y"`

	StartX         float64 `yaml:"start_x"`
	Smoothing      float64 `yaml:"smoothing"`
	AnimEvery      int     `yaml:"anim_every"`
	BackgroundStep float64 `yaml:"background_step"`

	TextRise float64 `yaml:"text_rise"`
	TextFade float64 `yaml:"text_fade"`

	ConfettiCount   int      `yaml:"confetti_count"`
	ConfettiGravity float64  `yaml:"confetti_gravity"`
	ConfettiColors  []string `yaml:"confetti_colors"`

	Compact LayoutTuning `yaml:"compact"`
	Full    LayoutTuning `yaml:"full"`
}

// DefaultTuning returns the stock game tuning.
func DefaultTuning() Tuning {
	return Tuning{
		TickRate:        60,
		SplashDelay:     2 * time.Second,
		StartDelay:      1500 * time.Millisecond,
		SessionDuration: 3 * time.Minute,
		SpawnGrace:      10 * time.Second,
		StationLead:     5 * time.Second,

		SpawnChance:  0.02,
		HazardCutoff: 0.3,
		MateCutoff:   0.5,
		SpawnY:       -10,
		SpawnSpan:    90,
		FallStep:     0.5,
		ExitY:        110,

		StartX:         50,
		Smoothing:      0.15,
		AnimEvery:      8,
		BackgroundStep: 0.5,

		TextRise: 1,
		TextFade: 0.02,

		ConfettiCount:   50,
		ConfettiGravity: 0.1,
		ConfettiColors:  []string{"#FFD700", "#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7"},

		Compact: LayoutTuning{
			RocketWidth:  33,
			RocketHeight: 80,
			RocketBottom: 50,
			RocketSpeed:  1.0,
			RocketPad:    5,
			JunkSize:     30,
			ItemSize:     15,
			JunkPad:      5,
			ItemPad:      2,
			ItemBuffer:   10,
		},
		Full: LayoutTuning{
			RocketWidth:  100,
			RocketHeight: 240,
			RocketBottom: 150,
			RocketSpeed:  0.7,
			RocketPad:    10,
			JunkSize:     60,
			ItemSize:     30,
			JunkPad:      5,
			ItemPad:      5,
		},
	}
}

// Layout returns the layout-dependent values for the given density.
func (t *Tuning) Layout(compact bool) LayoutTuning {
	if compact {
		return t.Compact
	}
	return t.Full
}

// TickDuration returns the simulated time covered by one tick.
func (t *Tuning) TickDuration() time.Duration {
	return time.Second / time.Duration(t.TickRate)
}

// Elapsed converts a tick count to simulated time without accumulating
// rounding error (10800 ticks at 60 Hz is exactly three minutes).
func (t *Tuning) Elapsed(ticks uint64) time.Duration {
	return time.Duration(int64(ticks) * int64(time.Second) / int64(t.TickRate))
}

// Validate reports whether the tuning can drive a session.
func (t *Tuning) Validate() error {
	switch {
	case t.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidTuning)
	case t.SessionDuration <= 0:
		return fmt.Errorf("%w: session_duration must be positive", ErrInvalidTuning)
	case t.SpawnChance < 0 || t.SpawnChance > 1:
		return fmt.Errorf("%w: spawn_chance must be within [0, 1]", ErrInvalidTuning)
	case t.HazardCutoff < 0 || t.HazardCutoff > 1:
		return fmt.Errorf("%w: hazard_cutoff must be within [0, 1]", ErrInvalidTuning)
	case t.MateCutoff < 0 || t.MateCutoff > 1:
		return fmt.Errorf("%w: mate_cutoff must be within [0, 1]", ErrInvalidTuning)
	case t.Smoothing <= 0 || t.Smoothing > 1:
		return fmt.Errorf("%w: smoothing must be within (0, 1]", ErrInvalidTuning)
	case t.TextFade <= 0:
		return fmt.Errorf("%w: text_fade must be positive", ErrInvalidTuning)
	case t.AnimEvery <= 0:
		return fmt.Errorf("%w: anim_every must be positive", ErrInvalidTuning)
	case len(t.ConfettiColors) == 0:
		return fmt.Errorf("%w: confetti_colors must not be empty", ErrInvalidTuning)
	}
	return nil
}

// LoadTuning reads a YAML tuning file on top of the defaults. Keys missing
// from the file keep their default value.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return DefaultTuning(), fmt.Errorf("config: %s: %w", path, err)
	}
	return t, nil
}
