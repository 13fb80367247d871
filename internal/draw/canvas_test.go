package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.SetColor(ColorRed)
	c.FillRect(0, 0, 1, 2)

	var first bytes.Buffer
	c.Render(&first)
	if !strings.Contains(first.String(), string(BlockFull)) {
		t.Fatalf("first render missing full block: %q", first.String())
	}

	var second bytes.Buffer
	c.Render(&second)
	if second.Len() != 0 {
		t.Fatalf("unchanged frame rendered %q", second.String())
	}

	c.Clear()
	var third bytes.Buffer
	c.Render(&third)
	if !strings.Contains(third.String(), "\033[1;1H ") {
		t.Fatalf("cleared cell not erased: %q", third.String())
	}
}

func TestMarkTextDirtyRepaints(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	var buf bytes.Buffer
	c.Render(&buf)
	buf.Reset()

	c.MarkTextDirty(3, 2, 2)
	c.Render(&buf)
	out := buf.String()
	if !strings.Contains(out, "\033[2;3H ") || !strings.Contains(out, "\033[2;4H ") {
		t.Fatalf("dirty cells not repainted: %q", out)
	}
	if strings.Contains(out, "\033[2;5H") {
		t.Fatalf("repainted beyond dirty range: %q", out)
	}
}

func TestHalfBlocks(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	c.SetColor(ColorGreen)
	c.SetFloat(0, 0)
	c.SetFloat(1, 1)
	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()
	if !strings.Contains(out, string(BlockUpperHalf)) || !strings.Contains(out, string(BlockLowerHalf)) {
		t.Fatalf("expected upper and lower half blocks: %q", out)
	}
}

func TestParseHex(t *testing.T) {
	if got := ParseHex("#ffd700"); got != ColorGold {
		t.Fatalf("ParseHex gold = %v", got)
	}
	if got := ParseHex("#123456"); got != ColorWhite {
		t.Fatalf("ParseHex unknown = %v", got)
	}
	if ColorTeal.Hex() != "#4ECDC4" {
		t.Fatalf("Hex = %q", ColorTeal.Hex())
	}
}

func TestLogicalToTerminal(t *testing.T) {
	c := NewScaledCanvas(100, 40, 1000, 800)
	col, row := c.LogicalToTerminal(500, 400)
	if col != 51 || row != 21 {
		t.Fatalf("LogicalToTerminal = (%d, %d), want (51, 21)", col, row)
	}
	if !c.InBounds(col, row) || c.InBounds(0, 1) || c.InBounds(1, 41) {
		t.Fatal("InBounds mismatch")
	}
}
