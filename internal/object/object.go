package object

import (
	"time"

	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/draw"
)

// Kind identifies what a falling entity is.
type Kind int

const (
	KindJunk     Kind = iota // Hazard: ends the session on contact
	KindMate                 // Collectible worth ScoreMate
	KindEmpanada             // Collectible worth ScoreEmpanada
)

func (k Kind) String() string {
	switch k {
	case KindJunk:
		return "junk"
	case KindMate:
		return "mate"
	case KindEmpanada:
		return "empanada"
	default:
		return "unknown"
	}
}

// Hazard reports whether touching the entity ends the session.
func (k Kind) Hazard() bool {
	return k == KindJunk
}

// Points returns the score awarded for collecting the entity.
func (k Kind) Points() int {
	switch k {
	case KindMate:
		return config.ScoreMate
	case KindEmpanada:
		return config.ScoreEmpanada
	default:
		return 0
	}
}

// Layout describes the play area. Width and Height are container pixels;
// entity positions are percentages of them.
type Layout struct {
	Compact bool
	Width   float64
	Height  float64
}

// Input is the per-frame control state fed to a session.
type Input struct {
	Left   bool
	Right  bool
	Launch bool // Launch the rocket (first press of the session)
	Cancel bool // Abandon the session and return to the menu
}

// Rand is the random source used for spawning and effects.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Spawner accepts entities created during an update.
type Spawner interface {
	NextID() uint64
	Spawn(j Junk)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Input    Input
	Layout   Layout
	Tuning   *config.Tuning
	Rand     Rand
	Elapsed  time.Duration // Simulated play time
	Launched bool
	Spawner  Spawner
}

// LayoutTuning returns the tuning for the context's layout density.
func (ctx UpdateContext) LayoutTuning() config.LayoutTuning {
	return ctx.Tuning.Layout(ctx.Layout.Compact)
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // Logical coordinates are container pixels
	Writer *draw.ChunkWriter // Terminal text overlays
	Layout Layout
}

// Object is an updatable game entity.
type Object interface {
	// Update advances the object by one tick. Returns true if the object
	// should be removed.
	Update(ctx UpdateContext) (remove bool)
}

// Drawable is implemented by objects that render on the terminal canvas.
type Drawable interface {
	Draw(ctx DrawContext)
}

// Advance updates every item in place and compacts away the ones that ask
// for removal. The backing array is reused.
func Advance[T any, P interface {
	*T
	Object
}](items []T, ctx UpdateContext) []T {
	kept := items[:0]
	for i := range items {
		if P(&items[i]).Update(ctx) {
			continue
		}
		kept = append(kept, items[i])
	}
	clear(items[len(kept):])
	return kept
}
