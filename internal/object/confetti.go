package object

import (
	"math"

	"github.com/tomz197/somanaut/internal/draw"
)

// Confetti is one celebratory particle. X and Y are container percentages,
// Size is pixels and Rotation degrees.
type Confetti struct {
	ID            uint64
	X, Y          float64
	VX, VY        float64
	Color         string
	Size          float64
	Rotation      float64
	RotationSpeed float64
}

// Update moves the particle under gravity. It is removed once it falls past
// the bottom of the play area.
func (p *Confetti) Update(ctx UpdateContext) bool {
	p.X += p.VX
	p.Y += p.VY
	p.Rotation += p.RotationSpeed
	p.VY += ctx.Tuning.ConfettiGravity
	return p.Y >= ctx.Tuning.ExitY
}

// Draw renders the particle as a small rotated square.
func (p Confetti) Draw(ctx DrawContext) {
	c := ctx.Canvas
	cx := p.X / 100 * ctx.Layout.Width
	cy := p.Y / 100 * ctx.Layout.Height
	half := p.Size / 2
	sin, cos := math.Sincos(p.Rotation * math.Pi / 180)

	pts := c.BorrowPoints(4)
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, k := range corners {
		dx, dy := k[0]*half, k[1]*half
		pts[i] = draw.Point{X: cx + dx*cos - dy*sin, Y: cy + dx*sin + dy*cos}
	}
	c.SetColor(draw.ParseHex(p.Color))
	c.DrawPolygon(pts, true)
}

// Burst creates count particles along the top edge, as shown on a win.
// Draws from rnd in a fixed order so seeded sessions replay identically.
func Burst(count int, colors []string, rnd Rand, nextID func() uint64) []Confetti {
	out := make([]Confetti, 0, count)
	for range count {
		p := Confetti{ID: nextID()}
		p.X = rnd.Float64() * 100
		p.Y = -10
		p.VX = (rnd.Float64() - 0.5) * 2
		p.VY = rnd.Float64()*2 + 1
		p.Color = colors[int(rnd.Float64()*float64(len(colors)))%len(colors)]
		p.Size = rnd.Float64()*8 + 4
		p.Rotation = rnd.Float64() * 360
		p.RotationSpeed = (rnd.Float64() - 0.5) * 10
		out = append(out, p)
	}
	return out
}
