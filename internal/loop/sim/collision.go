package sim

import "github.com/tomz197/somanaut/internal/object"

// collideLocked moves every entity, drops the ones that left the play area
// and resolves contacts with the rocket, all in one pass. It reports whether
// a hazard ended the session; entities after the hazard are kept untouched.
func (s *Simulation) collideLocked(ctx object.UpdateContext, out *outbox) (ended bool) {
	rocket := s.rocket.Hitbox(ctx)

	kept := s.junk[:0]
	for i := range s.junk {
		j := &s.junk[i]
		if j.Update(ctx) {
			continue
		}
		box, buffer := j.Hitbox(ctx)
		if !rocket.Overlaps(box, buffer) {
			kept = append(kept, *j)
			continue
		}

		if j.Kind.Hazard() {
			kept = append(kept, s.junk[i+1:]...)
			s.compactJunk(kept)
			s.endLocked(PhaseGameOver, out)
			return true
		}

		points := j.Kind.Points()
		s.score += points
		s.pendingText = append(s.pendingText, object.NewScoreText(s.nextIDLocked(), j.X, j.Y, points))
		out.sounds = append(out.sounds, SoundCollect)
	}
	s.compactJunk(kept)
	return false
}

// compactJunk installs kept as the live list and zeroes the dropped tail.
func (s *Simulation) compactJunk(kept []object.Junk) {
	clear(s.junk[len(kept):])
	s.junk = kept
}
