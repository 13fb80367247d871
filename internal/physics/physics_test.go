package physics

import (
	"math"
	"testing"
)

func TestOverlaps(t *testing.T) {
	rocket := Rect{X: 510, Y: 420, W: 80, H: 220}
	tests := []struct {
		name   string
		other  Rect
		buffer float64
		want   bool
	}{
		{"inside", Rect{X: 525, Y: 485, W: 50, H: 50}, 0, true},
		{"left of", Rect{X: 400, Y: 485, W: 50, H: 50}, 0, false},
		{"touching edge", Rect{X: 460, Y: 485, W: 50, H: 50}, 0, false},
		{"within buffer", Rect{X: 455, Y: 485, W: 50, H: 50}, 10, true},
		{"above", Rect{X: 525, Y: 300, W: 50, H: 50}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rocket.Overlaps(tt.other, tt.buffer); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInset(t *testing.T) {
	got := Rect{X: 10, Y: 20, W: 100, H: 40}.Inset(10)
	want := Rect{X: 20, Y: 30, W: 80, H: 20}
	if got != want {
		t.Fatalf("Inset = %+v, want %+v", got, want)
	}
	if r := (Rect{W: 4, H: 4}).Inset(5); r.W != 0 || r.H != 0 {
		t.Fatalf("over-inset size = %vx%v, want 0x0", r.W, r.H)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(120, 0, 90); got != 90 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-3, 0, 90); got != 0 {
		t.Fatalf("Clamp low = %v", got)
	}
	if got := Clamp(5, 0, -1); got != 0 {
		t.Fatalf("Clamp inverted = %v, want 0", got)
	}
	if got := Approach(50, 60, 0.15); math.Abs(got-51.5) > 1e-9 {
		t.Fatalf("Approach = %v, want 51.5", got)
	}
}
