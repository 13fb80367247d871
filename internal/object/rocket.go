package object

import (
	"github.com/tomz197/somanaut/internal/config"
	"github.com/tomz197/somanaut/internal/draw"
	"github.com/tomz197/somanaut/internal/physics"
)

// Rocket is the player-controlled ship. X and TargetX are percentages of the
// container width; the remaining dimensions are pixels. The rocket eases
// toward TargetX, which moves at a fixed speed while a direction is held.
type Rocket struct {
	X       float64
	TargetX float64
	Bottom  float64 // Distance from the container bottom
	Width   float64
	Height  float64
	Frame   int // Exhaust animation frame, 1..3

	ticks int
}

// NewRocket creates a rocket at startX sized for the layout.
func NewRocket(startX float64, lt config.LayoutTuning) Rocket {
	return Rocket{
		X:       startX,
		TargetX: startX,
		Bottom:  lt.RocketBottom,
		Width:   lt.RocketWidth,
		Height:  lt.RocketHeight,
		Frame:   1,
	}
}

// MaxX returns the largest X that keeps the rocket inside the container.
func (r *Rocket) MaxX(l Layout) float64 {
	if l.Width <= 0 {
		return 100
	}
	return max(0, 100-r.Width/l.Width*100)
}

// Clamp pulls X and TargetX back inside the container, as after a resize.
func (r *Rocket) Clamp(l Layout) {
	maxX := r.MaxX(l)
	r.X = physics.Clamp(r.X, 0, maxX)
	r.TargetX = physics.Clamp(r.TargetX, 0, maxX)
}

// Update steers and eases the rocket. Callers only update a launched rocket.
func (r *Rocket) Update(ctx UpdateContext) bool {
	speed := ctx.LayoutTuning().RocketSpeed
	maxX := r.MaxX(ctx.Layout)

	if ctx.Input.Left {
		r.TargetX -= speed
	}
	if ctx.Input.Right {
		r.TargetX += speed
	}
	r.TargetX = physics.Clamp(r.TargetX, 0, maxX)
	r.X = physics.Clamp(physics.Approach(r.X, r.TargetX, ctx.Tuning.Smoothing), 0, maxX)

	r.ticks++
	if r.ticks%ctx.Tuning.AnimEvery == 0 {
		r.Frame = (r.Frame+1)%3 + 1
	}
	return false
}

// Rect returns the rocket's box in container pixels.
func (r *Rocket) Rect(l Layout) physics.Rect {
	return physics.Rect{
		X: r.X / 100 * l.Width,
		Y: l.Height - r.Bottom - r.Height,
		W: r.Width,
		H: r.Height,
	}
}

// Hitbox returns the padded collision box.
func (r *Rocket) Hitbox(ctx UpdateContext) physics.Rect {
	return r.Rect(ctx.Layout).Inset(ctx.LayoutTuning().RocketPad)
}

// Draw renders the hull, fins and, once launched, the exhaust flame.
func (r Rocket) Draw(ctx DrawContext, launched bool) {
	box := r.Rect(ctx.Layout)
	c := ctx.Canvas
	x, y, w, h := box.X, box.Y, box.W, box.H

	hull := c.BorrowPoints(5)
	hull[0] = draw.Point{X: x + w*0.5, Y: y}
	hull[1] = draw.Point{X: x + w*0.8, Y: y + h*0.25}
	hull[2] = draw.Point{X: x + w*0.8, Y: y + h*0.8}
	hull[3] = draw.Point{X: x + w*0.2, Y: y + h*0.8}
	hull[4] = draw.Point{X: x + w*0.2, Y: y + h*0.25}
	c.SetColor(draw.ColorWhite)
	c.DrawPolygon(hull, true)

	c.SetColor(draw.ColorRed)
	c.FillRect(x+w*0.4, y+h*0.3, w*0.2, h*0.1)
	fins := c.BorrowPoints(3)
	fins[0] = draw.Point{X: x + w*0.2, Y: y + h*0.55}
	fins[1] = draw.Point{X: x + w*0.2, Y: y + h*0.85}
	fins[2] = draw.Point{X: x, Y: y + h*0.85}
	c.DrawPolygon(fins, true)
	fins[0] = draw.Point{X: x + w*0.8, Y: y + h*0.55}
	fins[1] = draw.Point{X: x + w*0.8, Y: y + h*0.85}
	fins[2] = draw.Point{X: x + w, Y: y + h*0.85}
	c.DrawPolygon(fins, true)

	if !launched {
		return
	}
	flame := c.BorrowPoints(3)
	length := h * (0.1 + 0.05*float64(r.Frame))
	flame[0] = draw.Point{X: x + w*0.3, Y: y + h*0.8}
	flame[1] = draw.Point{X: x + w*0.7, Y: y + h*0.8}
	flame[2] = draw.Point{X: x + w*0.5, Y: y + h*0.8 + length}
	c.SetColor(draw.ColorYellow)
	c.DrawPolygon(flame, true)
}
