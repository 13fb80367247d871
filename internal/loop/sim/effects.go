package sim

import "github.com/tomz197/somanaut/internal/object"

// decayEffectsLocked advances floating texts and confetti. Texts created by
// this tick's collisions join afterwards so they are published at full
// opacity.
func (s *Simulation) decayEffectsLocked(ctx object.UpdateContext) {
	s.texts = object.Advance(s.texts, ctx)
	s.texts = append(s.texts, s.pendingText...)
	clear(s.pendingText)
	s.pendingText = s.pendingText[:0]

	s.confetti = object.Advance(s.confetti, ctx)
}
