package client

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomz197/somanaut/internal/draw"
	"github.com/tomz197/somanaut/internal/loop/config"
	"github.com/tomz197/somanaut/internal/loop/sim"
	"github.com/tomz197/somanaut/internal/object"
)

// view identifies the overlay on screen. A change clears the terminal so
// text from the previous overlay does not persist.
type view struct {
	screen  Screen
	phase   sim.Phase
	loading bool
	paused  bool
	claim   string
}

func (c *Client) currentView() view {
	snap := c.state.snap
	return view{
		screen:  c.state.Screen,
		phase:   snap.Phase,
		loading: snap.Loading,
		paused:  snap.Paused,
		claim:   c.state.claimMsg,
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	v := c.currentView()
	if v != c.state.prevView || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevView = v
		c.state.wasInactive = c.state.isInactive
	}

	snap := c.state.snap
	c.canvas.Clear()

	// Canvas pass. Text overlays are written after Render so the cells
	// under them are not repainted this frame.
	ctx := object.DrawContext{Canvas: c.canvas, Layout: snap.Layout}
	c.drawBackground(snap)
	if snap.Phase != sim.PhaseLoading && snap.Phase != sim.PhaseHome {
		if snap.StationVisible {
			c.drawStation(snap)
		}
		for _, j := range snap.Junk {
			j.Draw(ctx)
		}
		snap.Rocket.Draw(ctx, snap.Launched)
		confetti := snap.Confetti
		if snap.Phase == sim.PhaseWin {
			confetti = c.state.confetti
		}
		for _, p := range confetti {
			p.Draw(ctx)
		}
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	if snap.Phase == sim.PhasePlaying {
		ctx.Writer = c.chunkWriter
		for _, j := range snap.Junk {
			if !j.Kind.Hazard() {
				j.Draw(ctx)
			}
		}
		for _, t := range snap.Texts {
			t.Draw(ctx)
		}
	}

	c.drawUI(snap)

	if c.bell != nil {
		if err := c.bell.Flush(c.chunkWriter); err != nil {
			return err
		}
	}
	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current phase.
func (c *Client) drawUI(snap *sim.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.Screen == ScreenShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch snap.Phase {
	case sim.PhaseLoading:
		c.drawLoadingScreen(termWidth, centerX, centerY)
	case sim.PhaseHome:
		c.drawHomeScreen(snap, termWidth, centerX, centerY)
	case sim.PhasePlaying:
		c.drawPlayingHUD(snap, termWidth, termHeight)
	case sim.PhaseGameOver, sim.PhaseWin:
		c.drawEndScreen(snap, termWidth, centerX, centerY)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.centered(centerX, centerY-2, "", "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.centered(centerX, centerY, "", msg)
	c.centered(centerX, centerY+2, "", "Press any key to continue")
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

var funFact = struct {
	title  string
	points []string
}{
	title: "What is a Somanaut?",
	points: []string{
		"A Somanaut is a brave explorer of the Somnia network.",
		"They travel through the digital cosmos, collecting rare artifacts and discovering new worlds.",
		"Somanauts are pioneers of the decentralized future, building a new reality one block at a time.",
	},
}

// drawLoadingScreen shows the splash: a spinner and a fun fact.
func (c *Client) drawLoadingScreen(termWidth, centerX, centerY int) {
	cw := c.chunkWriter
	spin := spinnerFrames[time.Now().UnixMilli()/120%int64(len(spinnerFrames))]
	c.centered(centerX, centerY-6, draw.StyleBold, "SOMANAUT")
	cw.WriteAt(centerX-5, centerY-4, spin+" Loading")

	c.centered(centerX, centerY-1, draw.StyleCyan, funFact.title)
	width := min(termWidth-6, 70)
	row := centerY + 1
	for _, p := range funFact.points {
		for i, line := range wrap(p, width-2) {
			prefix := "  "
			if i == 0 {
				prefix = "* "
			}
			cw.WriteAt(centerX-width/2, row, prefix+line)
			row++
		}
	}
}

// drawHomeScreen draws the title, the player's high scores and the server
// hall of fame.
func (c *Client) drawHomeScreen(snap *sim.Snapshot, termWidth, centerX, centerY int) {
	cw := c.chunkWriter
	art := banner("SOMANAUT")
	top := max(centerY-10, 1)
	if artWidth(art)+2 <= termWidth {
		for i, line := range art {
			c.centered(centerX, top+i, "", line)
		}
		top += len(art)
	} else {
		c.centered(centerX, top, draw.StyleBold, "SOMANAUT")
		top++
	}
	c.centered(centerX, top+1, "", "~ Dodge the junk, grab mate and empanadas, reach the station ~")

	if snap.Loading {
		c.centered(centerX, top+3, draw.StyleYellow, ">>  Get ready...  <<")
	} else if time.Now().UnixMilli()/600%2 == 0 {
		c.centered(centerX, top+3, "", ">>  Press ENTER to Start  <<")
	}

	// Two columns: own high scores and the hall of fame.
	listTop := top + 5
	left := centerX - 22
	right := centerX + 4
	cw.WriteAt(left, listTop, draw.StyleCyan+"Your high scores"+draw.StyleReset)
	if len(snap.HighScores) == 0 {
		cw.WriteAt(left, listTop+1, "No scores yet")
	}
	for i, s := range snap.HighScores {
		cw.WriteAt(left, listTop+1+i, fmt.Sprintf("%d. %-6d", i+1, s))
	}

	cw.WriteAt(right, listTop, draw.StyleCyan+"Hall of fame"+draw.StyleReset)
	hall := c.lobby.TopScores()
	if len(hall) == 0 {
		cw.WriteAt(right, listTop+1, "Be the first!")
	}
	for i, e := range hall {
		cw.WriteAt(right, listTop+1+i, fmt.Sprintf("%d. %-*s %d", i+1, config.MaxUsernameLen, e.Username, e.Score))
	}

	controlsY := listTop + config.HallOfFameSize + 2
	c.centered(centerX, controlsY, "", "Controls")
	controlLines := []string{
		"A D / < >  . . . .  Move",
		"SPACE  . . . . .  Launch",
		"ESC  . . . . . . .  Menu",
		"M  . . . . . . . .  Mute",
		"Q  . . . . . . . .  Quit",
	}
	for i, line := range controlLines {
		c.centered(centerX, controlsY+1+i, "", line)
	}
	c.drawMuteBadge(termWidth)
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (since we don't clear every frame).
func (c *Client) drawPlayingHUD(snap *sim.Snapshot, termWidth, termHeight int) {
	cw := c.chunkWriter
	scoreText := fmt.Sprintf("Score: %-6d", snap.Score)
	cw.WriteAt(2, 1, scoreText)
	c.canvas.MarkTextDirty(2, 1, len(scoreText))

	timeText := "Time: " + clock(snap.Remaining)
	cw.WriteAt(termWidth-len(timeText)-1, 1, timeText)
	c.canvas.MarkTextDirty(termWidth-len(timeText)-1, 1, len(timeText))

	playersText := fmt.Sprintf("Players: %-4d", c.lobby.Players())
	cw.WriteAt(termWidth-len(playersText)-1, termHeight, playersText)
	c.canvas.MarkTextDirty(termWidth-len(playersText)-1, termHeight, len(playersText))

	hint := "ESC menu"
	cw.WriteAt(2, termHeight, hint)
	c.canvas.MarkTextDirty(2, termHeight, len(hint))
	c.drawMuteBadge(termWidth)

	centerX := termWidth / 2
	switch {
	case snap.Paused:
		msg := fmt.Sprintf("PAUSED: enlarge the terminal to at least %dx%d", config.MinTermWidth, config.MinTermHeight)
		c.centered(centerX, termHeight/2, draw.StyleYellow, msg)
	case !snap.Launched:
		msg := ">>  Press SPACE to Launch  <<"
		c.centered(centerX, termHeight/2, "", msg)
	}
}

// drawEndScreen draws the game over or victory screen with the reward and
// claim status.
func (c *Client) drawEndScreen(snap *sim.Snapshot, termWidth, centerX, centerY int) {
	art := banner("GAME OVER")
	if snap.Phase == sim.PhaseWin {
		art = banner("DOCKED")
	}
	top := max(centerY-7, 1)
	if artWidth(art)+2 <= termWidth {
		for i, line := range art {
			c.centered(centerX, top+i, "", line)
		}
		top += len(art)
	} else {
		title := "GAME OVER"
		if snap.Phase == sim.PhaseWin {
			title = "DOCKED"
		}
		c.centered(centerX, top, draw.StyleBold, title)
		top++
	}

	lines := []string{
		fmt.Sprintf("Score: %d", snap.Score),
		fmt.Sprintf("Reward: %g SOMACOIN", snap.Reward),
	}
	if snap.Phase == sim.PhaseWin {
		lines = append([]string{"You reached the station!"}, lines...)
	}
	for i, line := range lines {
		c.centered(centerX, top+1+i, "", line)
	}

	row := top + len(lines) + 2
	if c.state.claimMsg != "" {
		c.centered(centerX, row, draw.StyleYellow, c.state.claimMsg)
	} else if c.airdrop != nil && snap.Reward > 0 {
		msg := "Press C to claim your reward"
		c.centered(centerX, row, draw.StyleGreen, msg)
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		prompt := ">>  ENTER play again  |  ESC menu  <<"
		c.centered(centerX, row+2, "", prompt)
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.centered(centerX, centerY-3, "", "SERVER SHUTTING DOWN")
	c.centered(centerX, centerY-1, "", "The server is restarting for maintenance.")
	c.centered(centerX, centerY, "", "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.centered(centerX, centerY+2, "", fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.centered(centerX, centerY+4, "", "Press Q to disconnect now")
}

// centered writes s centered on centerX in style and marks the cells dirty
// so the canvas repaints them once the text is gone.
func (c *Client) centered(centerX, row int, style, s string) {
	n := utf8.RuneCountInString(s)
	col := centerX - n/2
	if style != "" {
		s = style + s + draw.StyleReset
	}
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, n)
}

func (c *Client) drawMuteBadge(termWidth int) {
	if !c.state.muted {
		return
	}
	cw := c.chunkWriter
	cw.WriteAt(termWidth-7, 2, draw.StyleDim+"[muted]"+draw.StyleReset)
	c.canvas.MarkTextDirty(termWidth-7, 2, 7)
}

// starCount is the number of background stars.
const starCount = 64

// drawBackground scrolls a fixed star field with the session's background
// offset. The palette follows the background phase.
func (c *Client) drawBackground(snap *sim.Snapshot) {
	w, h := snap.Layout.Width, snap.Layout.Height
	if w <= 0 || h <= 0 {
		return
	}
	c.canvas.SetColor(starColor(snap.BackgroundPhase, snap.GradientProgress))
	for i := range starCount {
		// Cheap integer hash keeps the field stable across frames.
		hx := uint32(i)*2654435761 + 7
		hy := uint32(i)*2246822519 + 13
		x := float64(hx%1000) / 1000 * w
		depth := 0.5 + float64(i%3)*0.25
		y := float64(hy%1000)/1000*h + snap.Background*depth
		for y >= h {
			y -= h
		}
		c.canvas.SetFloat(x, y)
	}
}

func starColor(phase int, gradient float64) draw.Color {
	switch {
	case phase == 1:
		return draw.ColorWhite
	case phase == 2:
		return draw.ColorSky
	case gradient < 50:
		return draw.ColorPurple
	default:
		return draw.ColorCream
	}
}

// drawStation lowers the space station from the top edge during the last
// seconds of a session.
func (c *Client) drawStation(snap *sim.Snapshot) {
	w, h := snap.Layout.Width, snap.Layout.Height
	lead := c.tuning.StationLead
	progress := 1.0
	if lead > 0 {
		progress = 1 - min(float64(snap.Remaining)/float64(lead), 1)
	}
	sw, sh := w*0.5, h*0.12
	x := (w - sw) / 2
	y := -sh + progress*(sh+h*0.08)

	c.canvas.SetColor(draw.ColorGray)
	c.canvas.FillRect(x+sw*0.35, y, sw*0.3, sh)
	c.canvas.SetColor(draw.ColorBlue)
	c.canvas.FillRect(x, y+sh*0.3, sw*0.3, sh*0.4)
	c.canvas.FillRect(x+sw*0.7, y+sh*0.3, sw*0.3, sh*0.4)
	c.canvas.SetColor(draw.ColorGold)
	c.canvas.FillRect(x+sw*0.45, y+sh*0.35, sw*0.1, sh*0.3)
}

// clock formats a duration as m:ss, rounding up so the display reaches 0:00
// only when time is up.
func clock(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// wrap splits s into lines of at most width bytes on word boundaries.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// glyphs is the subset of the figlet "small" font the titles use.
var glyphs = map[rune][4]string{
	'A': {`   _   `, `  /_\  `, ` / _ \ `, `/_/ \_\`},
	'C': {`  ___ `, ` / __|`, `| (__ `, ` \___|`},
	'D': {` ___  `, `|   \ `, `| |) |`, `|___/ `},
	'E': {` ___ `, `| __|`, `| _| `, `|___|`},
	'G': {`  ___ `, ` / __|`, `| (_ |`, ` \___|`},
	'K': {` _  __`, `| |/ /`, `| ' < `, `|_|\_\`},
	'M': {` __  __ `, `|  \/  |`, `| |\/| |`, `|_|  |_|`},
	'N': {` _  _ `, `| \| |`, "| .` |", `|_|\_|`},
	'O': {`  ___  `, ` / _ \ `, `| (_) |`, ` \___/ `},
	'R': {` ___ `, `| _ \`, `|   /`, `|_|_\`},
	'S': {` ___ `, `/ __|`, `\__ \`, `|___/`},
	'T': {` _____ `, `|_   _|`, `  | |  `, `  |_|  `},
	'U': {` _   _ `, `| | | |`, `| |_| |`, ` \___/ `},
	'V': {`__   __`, `\ \ / /`, ` \ V / `, `  \_/  `},
	' ': {`  `, `  `, `  `, `  `},
}

// banner renders word in the glyph font. Unknown runes are skipped.
func banner(word string) []string {
	var rows [4]strings.Builder
	for _, r := range word {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(g[i])
		}
	}
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].String()
	}
	return out
}

func artWidth(art []string) int {
	w := 0
	for _, line := range art {
		w = max(w, len(line))
	}
	return w
}
