package object

import (
	"fmt"

	"github.com/tomz197/somanaut/internal/draw"
)

// FloatingText is a score popup that rises and fades out.
// X and Y are container percentages.
type FloatingText struct {
	ID      uint64
	X, Y    float64
	Text    string
	Opacity float64
}

// NewScoreText creates a fully opaque "+points" popup.
func NewScoreText(id uint64, x, y float64, points int) FloatingText {
	return FloatingText{ID: id, X: x, Y: y, Text: fmt.Sprintf("+%d", points), Opacity: 1}
}

// Update raises and fades the text. It is removed once fully transparent.
func (t *FloatingText) Update(ctx UpdateContext) bool {
	t.Y -= ctx.Tuning.TextRise
	t.Opacity -= ctx.Tuning.TextFade
	return t.Opacity <= 0
}

// Draw writes the text at its position, dimmed as it fades.
func (t FloatingText) Draw(ctx DrawContext) {
	if ctx.Writer == nil || t.Text == "" {
		return
	}
	col, row := ctx.Canvas.LogicalToTerminal(t.X/100*ctx.Layout.Width, t.Y/100*ctx.Layout.Height)
	if !ctx.Canvas.InBounds(col, row) {
		return
	}
	style := draw.StyleYellow
	if t.Opacity < 0.5 {
		style = draw.StyleDim
	}
	ctx.Writer.WriteAt(col, row, style+t.Text+draw.StyleReset)
	ctx.Canvas.MarkTextDirty(col, row, len(t.Text))
}
