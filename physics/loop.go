package physics

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrLoopClosed  = errors.New("physics: loop is not running")
	ErrLoopStarted = errors.New("physics: loop already started")
)

const DefaultFrameInterval = 16 * time.Millisecond

// Frame is what the host renders after every input or tick.
type Frame struct {
	Tick       uint64  `json:"tick"`
	Mode       Mode    `json:"mode"`
	Focused    int     `json:"focused"`
	Transforms []Point `json:"transforms"`
}

// Loop owns one board. A single goroutine (Run) applies inputs and, in gravity mode only,
// one Step per frame interval, so no state is shared with the senders.
type Loop struct {
	inputs   chan Input
	interval time.Duration
	rng      *rand.Rand
	onFrame  func(Frame)
	onCue    func(Cue)

	started atomic.Bool
	done    chan struct{}

	mu     sync.RWMutex
	latest State
	ticks  uint64
}

type LoopOption func(*Loop)

func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithRand(rng *rand.Rand) LoopOption {
	return func(l *Loop) { l.rng = rng }
}

// OnFrame is called from the loop goroutine after every state change.
func OnFrame(fn func(Frame)) LoopOption {
	return func(l *Loop) { l.onFrame = fn }
}

func OnCue(fn func(Cue)) LoopOption {
	return func(l *Loop) { l.onCue = fn }
}

func NewLoop(initial State, opts ...LoopOption) *Loop {
	l := &Loop{
		inputs:   make(chan Input, 16),
		interval: DefaultFrameInterval,
		done:     make(chan struct{}),
		latest:   initial.clone(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Run processes inputs and frames until ctx is cancelled. Once Run returns the state is
// never touched again.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrLoopStarted
	}
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	state := l.Snapshot()
	for {
		// Ambient mode never ticks.
		var tick <-chan time.Time
		if state.Mode == ModeGravity {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return nil
		case in := <-l.inputs:
			wasGravity := state.Mode == ModeGravity
			var cues []Cue
			state, cues = Apply(state, in, l.rng)
			if !wasGravity && state.Mode == ModeGravity {
				ticker.Reset(l.interval)
			}
			l.publish(state, cues, false)
		case <-tick:
			var cues []Cue
			state, cues = Step(state, 1)
			l.publish(state, cues, true)
		}
	}
}

// Send queues an input for the loop.
func (l *Loop) Send(ctx context.Context, in Input) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.inputs <- in:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest.clone()
}

func (l *Loop) Ticks() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ticks
}

func (l *Loop) publish(s State, cues []Cue, ticked bool) {
	l.mu.Lock()
	l.latest = s.clone()
	if ticked {
		l.ticks++
	}
	tick := l.ticks
	l.mu.Unlock()

	if l.onFrame != nil {
		l.onFrame(Frame{Tick: tick, Mode: s.Mode, Focused: s.Focused, Transforms: Transforms(s)})
	}
	if l.onCue != nil {
		for _, c := range cues {
			l.onCue(c)
		}
	}
}
