// Package config centralizes host runtime parameters: frame pacing, terminal
// limits and session housekeeping. Gameplay tuning lives in internal/config.
package config

import "time"

// Terminal cells map to container pixels at this size. Layout widths and
// heights handed to the simulation are cells times these.
const (
	CellPixelWidth  = 8
	CellPixelHeight = 16
)

// Terminal limits.
const (
	MinTermWidth   = 40  // Below this the client pauses and asks for a bigger window
	MinTermHeight  = 20  // Same, rows
	CompactCols    = 100 // Narrower terminals use the compact layout
	MaxTermWidth   = 240 // Larger terminals are letterboxed
	MaxTermHeight  = 80
	MaxUsernameLen = 16 // Maximum display length for player names
)

// Leaderboard
const (
	HallOfFameSize = 5
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Browser sessions
const (
	SocketReadLimit  = 1 << 16
	SocketPongWait   = 60 * time.Second
	SocketPingPeriod = 25 * time.Second
	SocketWriteWait  = 10 * time.Second
	SocketSendBuffer = 32 // Frames queued per browser before it is dropped
)
