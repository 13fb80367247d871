package object

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/somanaut/internal/config"
)

// seq is a deterministic Rand that replays fixed values, then repeats the last.
type seq struct {
	vals []float64
	i    int
}

func (s *seq) Float64() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

type collector struct {
	id      uint64
	spawned []Junk
}

func (c *collector) NextID() uint64 {
	c.id++
	return c.id
}

func (c *collector) Spawn(j Junk) { c.spawned = append(c.spawned, j) }

func newCtx(compact bool) UpdateContext {
	tun := config.DefaultTuning()
	return UpdateContext{
		Layout: Layout{Compact: compact, Width: 1000, Height: 800},
		Tuning: &tun,
	}
}

func TestRocketClampsToContainer(t *testing.T) {
	ctx := newCtx(false)
	r := NewRocket(50, ctx.LayoutTuning())
	ctx.Input.Right = true
	for range 2000 {
		r.Update(ctx)
	}
	if want := 90.0; math.Abs(r.TargetX-want) > 1e-9 || r.X > want+1e-9 {
		t.Fatalf("rocket at %v (target %v), want <= %v", r.X, r.TargetX, want)
	}

	ctx.Input = Input{Left: true}
	for range 2000 {
		r.Update(ctx)
	}
	if r.TargetX != 0 || r.X < 0 {
		t.Fatalf("rocket at %v (target %v), want 0", r.X, r.TargetX)
	}
}

func TestRocketClampAfterResize(t *testing.T) {
	ctx := newCtx(false)
	r := NewRocket(50, ctx.LayoutTuning())
	r.X, r.TargetX = 89, 90
	r.Clamp(Layout{Width: 400, Height: 800})
	if r.X != 75 || r.TargetX != 75 {
		t.Fatalf("rocket at %v (target %v), want 75", r.X, r.TargetX)
	}
	r.Clamp(Layout{Width: 50, Height: 800})
	if r.X != 0 || r.TargetX != 0 {
		t.Fatalf("oversized rocket at %v (target %v), want 0", r.X, r.TargetX)
	}
}

func TestRocketEasesTowardTarget(t *testing.T) {
	ctx := newCtx(false)
	r := NewRocket(50, ctx.LayoutTuning())
	ctx.Input.Right = true
	r.Update(ctx)
	// target 50.7, current 50 + 0.7*0.15
	if math.Abs(r.TargetX-50.7) > 1e-9 || math.Abs(r.X-50.105) > 1e-9 {
		t.Fatalf("got x=%v target=%v", r.X, r.TargetX)
	}
}

func TestRocketFrameCycles(t *testing.T) {
	ctx := newCtx(true)
	r := NewRocket(50, ctx.LayoutTuning())
	var frames []int
	for range 24 {
		r.Update(ctx)
		frames = append(frames, r.Frame)
	}
	if frames[6] != 1 || frames[7] != 3 || frames[15] != 2 || frames[23] != 1 {
		t.Fatalf("unexpected frame sequence %v", frames)
	}
}

func TestJunkFallsAndExits(t *testing.T) {
	ctx := newCtx(false)
	j := Junk{X: 10, Y: 109.8, Width: 60, Height: 60, Kind: KindJunk}
	if !j.Update(ctx) {
		t.Fatalf("junk at y=%v should be removed", j.Y)
	}
	j = Junk{Y: 109.4}
	if j.Update(ctx) {
		t.Fatalf("junk at y=%v should stay", j.Y)
	}
}

func TestHitboxBuffers(t *testing.T) {
	ctx := newCtx(true)
	item := Junk{X: 10, Y: 10, Width: 15, Height: 15, Kind: KindMate}
	box, buf := item.Hitbox(ctx)
	if buf != 10 || box.W != 11 {
		t.Fatalf("compact item hitbox = %+v buffer %v", box, buf)
	}
	hazard := Junk{X: 10, Y: 10, Width: 30, Height: 30, Kind: KindJunk}
	if _, buf := hazard.Hitbox(ctx); buf != 0 {
		t.Fatalf("hazard buffer = %v, want 0", buf)
	}
	if _, buf := item.Hitbox(newCtx(false)); buf != 0 {
		t.Fatalf("full layout item buffer = %v, want 0", buf)
	}
}

func TestFloatingTextFades(t *testing.T) {
	ctx := newCtx(false)
	txt := NewScoreText(1, 52, 60.5, 30)
	if txt.Text != "+30" || txt.Opacity != 1 {
		t.Fatalf("new text = %+v", txt)
	}
	ticks := 0
	for !txt.Update(ctx) {
		ticks++
		if ticks > 100 {
			t.Fatal("text never faded")
		}
	}
	if ticks < 48 || ticks > 50 {
		t.Fatalf("text faded after %d ticks, want ~49", ticks)
	}
}

func TestAdvanceCompacts(t *testing.T) {
	ctx := newCtx(false)
	texts := []FloatingText{
		{ID: 1, Opacity: 0.01},
		{ID: 2, Opacity: 1},
		{ID: 3, Opacity: 0.02},
	}
	texts = Advance(texts, ctx)
	if len(texts) != 1 || texts[0].ID != 2 {
		t.Fatalf("Advance kept %+v", texts)
	}
}

func TestBurst(t *testing.T) {
	var id uint64
	rnd := &seq{vals: []float64{0.5}}
	colors := config.DefaultTuning().ConfettiColors
	ps := Burst(50, colors, rnd, func() uint64 {
		id++
		return id
	})
	if len(ps) != 50 {
		t.Fatalf("burst size = %d", len(ps))
	}
	p := ps[0]
	if p.Y != -10 || p.X != 50 || p.VX != 0 || p.VY != 2 || p.Size != 8 || p.Color != colors[3] {
		t.Fatalf("particle = %+v", p)
	}
	if ps[49].ID != 50 {
		t.Fatalf("last id = %d", ps[49].ID)
	}
}

func TestConfettiFallsOut(t *testing.T) {
	ctx := newCtx(false)
	p := Confetti{Y: -10, VY: 1}
	for ticks := 0; !p.Update(ctx); ticks++ {
		if ticks > 1000 {
			t.Fatal("confetti never left the screen")
		}
	}
	if p.Y < 110 {
		t.Fatalf("removed at y=%v", p.Y)
	}
}

func TestSpawner(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want Kind
	}{
		{"junk", []float64{0.01, 0.9, 0.5}, KindJunk},
		{"mate", []float64{0.01, 0.2, 0.8, 0.5}, KindMate},
		{"empanada", []float64{0.01, 0.2, 0.3, 0.5}, KindEmpanada},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newCtx(false)
			c := &collector{}
			ctx.Spawner = c
			ctx.Rand = &seq{vals: tt.vals}
			ctx.Launched = true
			ctx.Elapsed = 11 * time.Second
			JunkSpawner{}.Update(ctx)
			if len(c.spawned) != 1 {
				t.Fatalf("spawned %d entities", len(c.spawned))
			}
			j := c.spawned[0]
			if j.Kind != tt.want || j.Y != -10 || j.X != 45 {
				t.Fatalf("spawned %+v", j)
			}
			wantSize := 30.0
			if tt.want.Hazard() {
				wantSize = 60
			}
			if j.Width != wantSize {
				t.Fatalf("size = %v, want %v", j.Width, wantSize)
			}
		})
	}
}

func TestSpawnerGracePeriod(t *testing.T) {
	ctx := newCtx(false)
	c := &collector{}
	ctx.Spawner = c
	ctx.Rand = &seq{vals: []float64{0}}
	ctx.Launched = true
	ctx.Elapsed = 10 * time.Second
	JunkSpawner{}.Update(ctx)
	ctx.Launched = false
	ctx.Elapsed = time.Minute
	JunkSpawner{}.Update(ctx)
	if len(c.spawned) != 0 {
		t.Fatalf("spawned during grace: %+v", c.spawned)
	}
}

func TestKindPoints(t *testing.T) {
	if KindMate.Points() != 20 || KindEmpanada.Points() != 30 || KindJunk.Points() != 0 {
		t.Fatal("unexpected point values")
	}
	if !KindJunk.Hazard() || KindMate.Hazard() {
		t.Fatal("unexpected hazard flags")
	}
}
