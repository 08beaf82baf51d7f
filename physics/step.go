package physics

import "math"

// Step advances the simulation by dt ticks. It does nothing outside gravity mode, and never
// moves or accelerates a card that is being dragged.
func Step(s State, dt float64) (State, []Cue) {
	next := s.clone()
	if next.Mode != ModeGravity || dt <= 0 {
		return next, nil
	}

	var cues []Cue
	decay := math.Pow(Friction, dt)
	for i := range next.Particles {
		p := &next.Particles[i]
		if p.Dragging {
			continue
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.VX *= decay
		p.VY *= decay

		hitX := bounce(&p.X, &p.VX, HalfWidth)
		hitY := bounce(&p.Y, &p.VY, HalfHeight)
		if hitX || hitY {
			cues = append(cues, Cue{Kind: CueBounce, Card: i})
		}
	}

	for i := 0; i < len(next.Particles); i++ {
		for j := i + 1; j < len(next.Particles); j++ {
			if repel(&next.Particles[i], &next.Particles[j], dt) {
				cues = append(cues, Cue{Kind: CueContact, Card: i, Other: j})
			}
		}
	}
	return next, cues
}

// bounce clamps pos to [-limit, limit] and reflects vel inward with restitution.
func bounce(pos, vel *float64, limit float64) bool {
	switch {
	case *pos > limit:
		*pos = limit
		*vel = -math.Abs(*vel) * Restitution
		return true
	case *pos < -limit:
		*pos = -limit
		*vel = math.Abs(*vel) * Restitution
		return true
	}
	return false
}

// repel nudges a and b apart when they are closer than ProximityThreshold. Coincident
// cards have no direction to push along and are left alone. Reports whether the nudge was
// strong enough to count as contact.
func repel(a, b *Particle, dt float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 || dist >= ProximityThreshold || math.IsNaN(dist) {
		return false
	}

	angle := math.Atan2(dy, dx)
	targetX := a.X + math.Cos(angle)*ProximityThreshold
	targetY := a.Y + math.Sin(angle)*ProximityThreshold
	ax := (targetX - b.X) * RepulsionStrength * dt
	ay := (targetY - b.Y) * RepulsionStrength * dt

	if !a.Dragging {
		a.VX -= ax
		a.VY -= ay
	}
	if !b.Dragging {
		b.VX += ax
		b.VY += ay
	}
	return math.Hypot(ax, ay) > ContactThreshold
}
