package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/tomz197/somanaut/internal/loop/sim"
)

// note is one tone of a cue, started at offset from the cue's beginning.
type note struct {
	freq     float64
	duration time.Duration
	wave     WaveType
	offset   time.Duration
}

var cues = map[sim.Sound][]note{
	// Two rising blips, the second overlapping the first.
	sim.SoundCollect: {
		{freq: 800, duration: 200 * time.Millisecond, wave: WaveSine},
		{freq: 1000, duration: 200 * time.Millisecond, wave: WaveSine, offset: 100 * time.Millisecond},
	},
	sim.SoundCollision: {
		{freq: 200, duration: 500 * time.Millisecond, wave: WaveSquare},
	},
	// C major arpeggio, C5 E5 G5 C6.
	sim.SoundVictory: {
		{freq: 523, duration: 500 * time.Millisecond, wave: WaveSine},
		{freq: 659, duration: 500 * time.Millisecond, wave: WaveSine, offset: 200 * time.Millisecond},
		{freq: 784, duration: 500 * time.Millisecond, wave: WaveSine, offset: 400 * time.Millisecond},
		{freq: 1047, duration: 500 * time.Millisecond, wave: WaveSine, offset: 600 * time.Millisecond},
	},
}

// Cue returns the streamer for a sound, or nil for an unknown one.
func Cue(snd sim.Sound, rate beep.SampleRate) beep.Streamer {
	notes, ok := cues[snd]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, len(notes))
	for i, n := range notes {
		parts[i] = delayed(Tone(n.freq, n.duration, n.wave, rate), n.offset, rate)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return beep.Mix(parts...)
}

// CueLength is the playing time of a sound.
func CueLength(snd sim.Sound) time.Duration {
	var end time.Duration
	for _, n := range cues[snd] {
		end = max(end, n.offset+n.duration)
	}
	return end
}
