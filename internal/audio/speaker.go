// Package audio turns session sound cues into output: synthesized tones on
// the local sound card, terminal bells for remote sessions, or nothing.
package audio

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/somanaut/internal/loop/sim"
)

const sampleRate = beep.SampleRate(44100)

// Speaker plays cues on the local audio device through one shared mixer.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewSpeaker creates a speaker with the given master volume (0..1+).
func NewSpeaker(volume float64) *Speaker {
	return &Speaker{mixer: &beep.Mixer{}, volume: volume}
}

// Initialize opens the audio device. Safe to call more than once.
func (s *Speaker) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play mixes the cue in and returns immediately.
func (s *Speaker) Play(snd sim.Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	cue := Cue(snd, sampleRate)
	if cue == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(newVolume(cue, s.volume))
	speaker.Unlock()
}

// Close stops all sounds and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}

// Bell rings the terminal bell for remote terminals. Cues are counted by
// Play and written by the render loop with Flush, so the session writer is
// only ever used from one goroutine.
type Bell struct {
	pending atomic.Int32
}

// Play queues one bell. Collect cues are too frequent to ring for.
func (b *Bell) Play(snd sim.Sound) {
	if snd == sim.SoundCollect {
		return
	}
	b.pending.Add(1)
}

// Flush writes the queued bells to w.
func (b *Bell) Flush(w io.Writer) error {
	n := b.pending.Swap(0)
	for range n {
		if _, err := io.WriteString(w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

// Mutable forwards cues unless muted.
type Mutable struct {
	sim.Audio
	muted atomic.Bool
}

// NewMutable wraps a. A nil a plays nothing.
func NewMutable(a sim.Audio) *Mutable {
	if a == nil {
		a = Nop{}
	}
	return &Mutable{Audio: a}
}

func (m *Mutable) Play(snd sim.Sound) {
	if m.muted.Load() {
		return
	}
	m.Audio.Play(snd)
}

// Toggle flips the mute state and returns the new one.
func (m *Mutable) Toggle() bool {
	for {
		old := m.muted.Load()
		if m.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Muted reports whether cues are being dropped.
func (m *Mutable) Muted() bool {
	return m.muted.Load()
}

// Nop drops every cue.
type Nop struct{}

func (Nop) Play(sim.Sound) {}

// Recorder keeps the cues it was asked to play. Hosts forward them to
// clients that synthesize sound themselves.
type Recorder struct {
	mu     sync.Mutex
	sounds []sim.Sound
}

func (r *Recorder) Play(snd sim.Sound) {
	r.mu.Lock()
	r.sounds = append(r.sounds, snd)
	r.mu.Unlock()
}

// Drain returns and clears the recorded cues.
func (r *Recorder) Drain() []sim.Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sounds
	r.sounds = nil
	return out
}
