// Package protocol defines the messages exchanged with browser clients.
// Every frame is an envelope {t, p}: a type tag and a type-specific payload.
package protocol

import (
	"errors"

	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/object"
)

// Version is sent in the hello reply so clients can refuse a mismatch.
const Version = 1

// Client to server.
const (
	TypeHello       = "hello"
	TypeInput       = "input"
	TypeCommand     = "command"
	TypeLayout      = "layout"
	TypeOrientation = "orientation"
)

// Server to client.
const (
	TypeWelcome = "welcome"
	TypeState   = "state"
	TypeSound   = "sound"
	TypeClaim   = "claim"
	TypeNotice  = "notice"
)

// Command actions.
const (
	ActionStart = "start"
	ActionMenu  = "menu"
	ActionClaim = "claim"
)

var (
	ErrUnknownType = errors.New("protocol: unknown message type")
	ErrMalformed   = errors.New("protocol: malformed message")
)

type Hello struct {
	Name   string `json:"name"`
	Wallet string `json:"wallet,omitempty"`
}

type Welcome struct {
	Version  int    `json:"version"`
	ClientID int    `json:"clientId"`
	Name     string `json:"name"`
}

type Input struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Launch bool `json:"launch"`
	Cancel bool `json:"cancel"`
}

type Command struct {
	Action string `json:"action"`
	Wallet string `json:"wallet,omitempty"` // ActionClaim only
}

type Layout struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Compact bool    `json:"compact"`
}

type Orientation struct {
	Blocked bool `json:"blocked"`
}

type Sound struct {
	Name string `json:"name"`
}

type Claim struct {
	OK     bool    `json:"ok"`
	Amount float64 `json:"amount"`
	Tx     string  `json:"tx,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type Notice struct {
	Level string `json:"level"` // info, warn, shutdown
	Text  string `json:"text"`
}

type Rocket struct {
	X      float64 `json:"x"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
	Frame  int     `json:"frame"`
}

type Entity struct {
	ID     uint64  `json:"id"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

type Text struct {
	ID      uint64  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text"`
	Opacity float64 `json:"opacity"`
}

type Particle struct {
	ID       uint64  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rot"`
	// Velocities let clients animate the win burst once state stops changing.
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	Spin float64 `json:"spin"`
}

type HallEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// State is a rendered view of one simulation snapshot.
type State struct {
	Seq        uint64      `json:"seq"`
	Phase      string      `json:"phase"`
	Loading    bool        `json:"loading"`
	Paused     bool        `json:"paused"`
	Launched   bool        `json:"launched"`
	Score      int         `json:"score"`
	Reward     float64     `json:"reward"`
	HighScores []int       `json:"highScores"`
	HallOfFame []HallEntry `json:"hallOfFame"`
	Players    int         `json:"players"`

	ElapsedMs   int64 `json:"elapsedMs"`
	RemainingMs int64 `json:"remainingMs"`
	DurationMs  int64 `json:"durationMs"`

	Background       float64 `json:"background"`
	BackgroundPhase  int     `json:"bgPhase"`
	GradientProgress float64 `json:"gradient"`
	StationVisible   bool    `json:"station"`
	Compact          bool    `json:"compact"`

	Rocket   Rocket     `json:"rocket"`
	Junk     []Entity   `json:"junk"`
	Texts    []Text     `json:"texts"`
	Confetti []Particle `json:"confetti"`
}

// NewState converts a snapshot. The snapshot is only read.
func NewState(snap *sim.Snapshot) State {
	st := State{
		Seq:        snap.Seq,
		Phase:      snap.Phase.String(),
		Loading:    snap.Loading,
		Paused:     snap.Paused,
		Launched:   snap.Launched,
		Score:      snap.Score,
		Reward:     snap.Reward,
		HighScores: snap.HighScores,
		HallOfFame: []HallEntry{},

		ElapsedMs:   snap.Elapsed.Milliseconds(),
		RemainingMs: snap.Remaining.Milliseconds(),
		DurationMs:  snap.Duration.Milliseconds(),

		Background:       snap.Background,
		BackgroundPhase:  snap.BackgroundPhase,
		GradientProgress: snap.GradientProgress,
		StationVisible:   snap.StationVisible,
		Compact:          snap.Layout.Compact,

		Rocket:   newRocket(snap.Rocket),
		Junk:     make([]Entity, len(snap.Junk)),
		Texts:    make([]Text, len(snap.Texts)),
		Confetti: make([]Particle, len(snap.Confetti)),
	}
	for i, j := range snap.Junk {
		st.Junk[i] = Entity{ID: j.ID, Kind: j.Kind.String(), X: j.X, Y: j.Y, Width: j.Width, Height: j.Height}
	}
	for i, t := range snap.Texts {
		st.Texts[i] = Text{ID: t.ID, X: t.X, Y: t.Y, Text: t.Text, Opacity: t.Opacity}
	}
	for i, c := range snap.Confetti {
		st.Confetti[i] = Particle{
			ID: c.ID, X: c.X, Y: c.Y, Color: c.Color, Size: c.Size, Rotation: c.Rotation,
			VX: c.VX, VY: c.VY, Spin: c.RotationSpeed,
		}
	}
	return st
}

func newRocket(r object.Rocket) Rocket {
	return Rocket{X: r.X, Bottom: r.Bottom, Width: r.Width, Height: r.Height, Frame: r.Frame}
}

// SimInput converts a client input message.
func (in Input) SimInput() sim.Input {
	return sim.Input{Left: in.Left, Right: in.Right, Launch: in.Launch, Cancel: in.Cancel}
}

// SimLayout converts a client layout message.
func (l Layout) SimLayout() object.Layout {
	return object.Layout{Compact: l.Compact, Width: l.Width, Height: l.Height}
}
