// Package physics animates the floating profile cards. Step and Apply are pure functions
// over a State value; Loop hosts them on a frame ticker.
package physics

import (
	"fmt"
	"math/rand/v2"
)

const (
	Friction    = 0.98
	Restitution = 0.8

	// Container half extents, relative to its center.
	HalfWidth  = 300.0
	HalfHeight = 200.0

	CardSize           = 120.0
	ProximityThreshold = CardSize * 0.8
	RepulsionStrength  = 0.05
	ContactThreshold   = 0.5

	FlickSpeed = 5.0
	SeedSpread = 100.0
	SeedSpeed  = 2.0

	AmbientAmplitude = 20.0
	ScrollFactor     = 0.05
)

type Mode int

const (
	ModeAmbient Mode = iota
	ModeGravity
)

func (m Mode) String() string {
	if m == ModeGravity {
		return "gravity"
	}
	return "ambient"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "gravity":
		*m = ModeGravity
	case "ambient":
		*m = ModeAmbient
	default:
		return fmt.Errorf("physics: unknown mode %q", b)
	}
	return nil
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Particle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Dragging bool    `json:"isDragging"`
}

// State is a snapshot of the whole card board. Particles is nil unless Mode is ModeGravity.
type State struct {
	Mode      Mode
	Cards     int
	Particles []Particle
	Focused   int
	Pointer   Point
	Viewport  Size
	ScrollY   float64
}

func NewState(cards int) State {
	if cards < 0 {
		cards = 0
	}
	viewport := Size{Width: 1280, Height: 800}
	return State{
		Mode:     ModeAmbient,
		Cards:    cards,
		Focused:  -1,
		Viewport: viewport,
		Pointer:  Point{X: viewport.Width / 2, Y: viewport.Height / 2},
	}
}

func (s State) clone() State {
	if s.Particles != nil {
		particles := make([]Particle, len(s.Particles))
		copy(particles, s.Particles)
		s.Particles = particles
	}
	return s
}

type CueKind string

const (
	CueBounce  CueKind = "bounce"
	CueContact CueKind = "contact"
	CueFocus   CueKind = "focus"
)

// Cue is a short feedback signal (haptic or sound) the host may play.
type Cue struct {
	Kind  CueKind `json:"kind"`
	Card  int     `json:"card"`
	Other int     `json:"other,omitempty"`
}

// Seed returns n particles at small random offsets around the center, drifting slowly.
func Seed(n int, rng *rand.Rand) []Particle {
	particles := make([]Particle, n)
	for i := range particles {
		particles[i] = Particle{
			X:  uniform(rng, SeedSpread),
			Y:  uniform(rng, SeedSpread),
			VX: uniform(rng, SeedSpeed),
			VY: uniform(rng, SeedSpeed),
		}
	}
	return particles
}

// uniform draws from [-spread, spread).
func uniform(rng *rand.Rand, spread float64) float64 {
	var f float64
	if rng != nil {
		f = rng.Float64()
	} else {
		f = rand.Float64()
	}
	return (f*2 - 1) * spread
}
