package object

import (
	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/draw"
	"github.com/tomz197/somanaut/internal/physics"
)

// Junk is a falling entity: space junk or a collectible. X and Y are
// percentages of the container, Width and Height pixels.
type Junk struct {
	ID     uint64
	X, Y   float64
	Width  float64
	Height float64
	Kind   Kind
}

// NewJunk creates an entity of the given kind sized for the layout.
func NewJunk(id uint64, kind Kind, x, y float64, lt config.LayoutTuning) Junk {
	size := lt.ItemSize
	if kind.Hazard() {
		size = lt.JunkSize
	}
	return Junk{ID: id, X: x, Y: y, Width: size, Height: size, Kind: kind}
}

// Update moves the entity down and reports whether it left the play area.
func (j *Junk) Update(ctx UpdateContext) bool {
	j.Y += ctx.Tuning.FallStep
	return j.Y > ctx.Tuning.ExitY
}

// Rect returns the entity's box in container pixels.
func (j *Junk) Rect(l Layout) physics.Rect {
	return physics.Rect{
		X: j.X / 100 * l.Width,
		Y: j.Y / 100 * l.Height,
		W: j.Width,
		H: j.Height,
	}
}

// Hitbox returns the padded collision box and the extra leniency applied
// when testing it against the rocket.
func (j *Junk) Hitbox(ctx UpdateContext) (box physics.Rect, buffer float64) {
	lt := ctx.LayoutTuning()
	pad := lt.ItemPad
	if j.Kind.Hazard() {
		pad = lt.JunkPad
	} else {
		buffer = lt.ItemBuffer
	}
	return j.Rect(ctx.Layout).Inset(pad), buffer
}

// Draw renders junk as a jagged polygon and collectibles as a filled badge
// with a one-letter label.
func (j Junk) Draw(ctx DrawContext) {
	r := j.Rect(ctx.Layout)
	c := ctx.Canvas
	switch j.Kind {
	case KindJunk:
		c.SetColor(draw.ColorGray)
		pts := c.BorrowPoints(len(junkOutline))
		for i, v := range junkOutline {
			// Per-entity wobble so debris does not look stamped.
			wobble := float64((j.ID*uint64(i+3))%5) * 0.02
			pts[i] = draw.Point{X: r.X + (v.X+wobble)*r.W, Y: r.Y + (v.Y-wobble)*r.H}
		}
		c.DrawPolygon(pts, true)
	case KindMate:
		c.SetColor(draw.ColorGreen)
		c.FillRect(r.X, r.Y, r.W, r.H)
		j.label(ctx, r, "M")
	case KindEmpanada:
		c.SetColor(draw.ColorOrange)
		c.FillRect(r.X, r.Y, r.W, r.H)
		j.label(ctx, r, "E")
	}
}

func (j Junk) label(ctx DrawContext, r physics.Rect, s string) {
	if ctx.Writer == nil {
		return
	}
	col, row := ctx.Canvas.LogicalToTerminal(r.X+r.W/2, r.Y+r.H/2)
	if !ctx.Canvas.InBounds(col, row) {
		return
	}
	ctx.Writer.WriteAt(col, row, draw.StyleBold+s+draw.StyleReset)
	ctx.Canvas.MarkTextDirty(col, row, len(s))
}

// junkOutline is an irregular octagon in unit coordinates.
var junkOutline = []draw.Point{
	{X: 0.30, Y: 0.00}, {X: 0.75, Y: 0.10}, {X: 1.00, Y: 0.40}, {X: 0.85, Y: 0.85},
	{X: 0.50, Y: 1.00}, {X: 0.15, Y: 0.80}, {X: 0.00, Y: 0.45}, {X: 0.10, Y: 0.15},
}
