package physics

import "math/rand/v2"

// Input is a discrete event fed to the board by its host.
type Input interface {
	apply(s *State, rng *rand.Rand) []Cue
}

// Toggle switches between ambient drift and gravity mode. Entering gravity mode reseeds
// every card; leaving it discards all simulated state.
type Toggle struct{}

// PointerMove is the pointer position in viewport coordinates.
type PointerMove struct{ X, Y float64 }

type Scroll struct{ Y float64 }

type Resize struct{ Width, Height float64 }

// DragStart captures Card under the pointer at X, Y relative to the container center.
type DragStart struct {
	Card int
	X, Y float64
}

type DragMove struct {
	Card int
	X, Y float64
}

// Release lets go of Card and flicks it in a random direction.
type Release struct{ Card int }

// Click focuses Card, or unfocuses it when it already has focus.
type Click struct{ Card int }

// Apply feeds one input to the board. rng may be nil to use the package source.
func Apply(s State, in Input, rng *rand.Rand) (State, []Cue) {
	next := s.clone()
	if in == nil {
		return next, nil
	}
	return next, in.apply(&next, rng)
}

func (Toggle) apply(s *State, rng *rand.Rand) []Cue {
	if s.Mode == ModeGravity {
		s.Mode = ModeAmbient
		s.Particles = nil
		return nil
	}
	s.Mode = ModeGravity
	s.Particles = Seed(s.Cards, rng)
	return nil
}

func (in PointerMove) apply(s *State, _ *rand.Rand) []Cue {
	s.Pointer = Point{X: in.X, Y: in.Y}
	return nil
}

func (in Scroll) apply(s *State, _ *rand.Rand) []Cue {
	s.ScrollY = in.Y
	return nil
}

func (in Resize) apply(s *State, _ *rand.Rand) []Cue {
	if in.Width > 0 && in.Height > 0 {
		s.Viewport = Size{Width: in.Width, Height: in.Height}
	}
	return nil
}

func (in DragStart) apply(s *State, _ *rand.Rand) []Cue {
	p := s.particle(in.Card)
	if p == nil {
		return nil
	}
	*p = Particle{X: in.X, Y: in.Y, Dragging: true}
	return nil
}

func (in DragMove) apply(s *State, _ *rand.Rand) []Cue {
	p := s.particle(in.Card)
	if p == nil || !p.Dragging {
		return nil
	}
	*p = Particle{X: in.X, Y: in.Y, Dragging: true}
	return nil
}

func (in Release) apply(s *State, rng *rand.Rand) []Cue {
	p := s.particle(in.Card)
	if p == nil || !p.Dragging {
		return nil
	}
	p.Dragging = false
	p.VX = uniform(rng, FlickSpeed)
	p.VY = uniform(rng, FlickSpeed)
	return nil
}

func (in Click) apply(s *State, _ *rand.Rand) []Cue {
	if in.Card < 0 || in.Card >= s.Cards {
		return nil
	}
	if s.Focused == in.Card {
		s.Focused = -1
	} else {
		s.Focused = in.Card
	}
	return []Cue{{Kind: CueFocus, Card: in.Card}}
}

// particle returns the simulated card i, or nil outside gravity mode.
func (s *State) particle(i int) *Particle {
	if s.Mode != ModeGravity || i < 0 || i >= len(s.Particles) {
		return nil
	}
	return &s.Particles[i]
}

// Transforms returns each card's visual offset: simulated positions in gravity mode,
// pointer and scroll parallax otherwise.
func Transforms(s State) []Point {
	out := make([]Point, s.Cards)
	if s.Mode == ModeGravity {
		for i := range out {
			if i < len(s.Particles) {
				out[i] = Point{X: s.Particles[i].X, Y: s.Particles[i].Y}
			}
		}
		return out
	}
	for i := range out {
		out[i] = AmbientOffset(i, s.Pointer, s.Viewport, s.ScrollY)
	}
	return out
}

// AmbientOffset is the parallax offset of card index; later cards drift further.
func AmbientOffset(index int, pointer Point, viewport Size, scrollY float64) Point {
	amplitude := AmbientAmplitude * float64(index+1)
	var off Point
	if viewport.Width > 0 {
		off.X = (pointer.X - viewport.Width/2) / viewport.Width * amplitude
	}
	if viewport.Height > 0 {
		off.Y = (pointer.Y - viewport.Height/2) / viewport.Height * amplitude
	}
	off.Y -= scrollY * ScrollFactor * float64(index+1)
	return off
}
