package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codingcats/api/physics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const cardWriteTimeout = 5 * time.Second

// CardHandlers hosts one floating-card board per websocket connection.
type CardHandlers struct {
	Cards         int
	FrameInterval time.Duration
	upgrader      websocket.Upgrader
}

func NewCardHandlers(cards int, frameInterval time.Duration, allowedOrigin string) *CardHandlers {
	return &CardHandlers{
		Cards:         cards,
		FrameInterval: frameInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// cardMessage is an input sent by the browser.
type cardMessage struct {
	Type   string  `json:"type"`
	Card   int     `json:"card"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (m cardMessage) input() (physics.Input, error) {
	switch m.Type {
	case "toggle":
		return physics.Toggle{}, nil
	case "pointer":
		return physics.PointerMove{X: m.X, Y: m.Y}, nil
	case "scroll":
		return physics.Scroll{Y: m.Y}, nil
	case "resize":
		return physics.Resize{Width: m.Width, Height: m.Height}, nil
	case "drag_start":
		return physics.DragStart{Card: m.Card, X: m.X, Y: m.Y}, nil
	case "drag_move":
		return physics.DragMove{Card: m.Card, X: m.X, Y: m.Y}, nil
	case "release":
		return physics.Release{Card: m.Card}, nil
	case "click":
		return physics.Click{Card: m.Card}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", m.Type)
	}
}

type boardMessage struct {
	Type  string         `json:"type"`
	Frame *physics.Frame `json:"frame,omitempty"`
	Cue   *physics.Cue   `json:"cue,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (h *CardHandlers) Board(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Card board upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	out := make(chan boardMessage, 64)
	// Frames are dropped when the client falls behind; the next frame supersedes them.
	emit := func(m boardMessage) {
		select {
		case out <- m:
		default:
		}
	}
	loop := physics.NewLoop(physics.NewState(h.Cards),
		physics.WithFrameInterval(h.FrameInterval),
		physics.OnFrame(func(f physics.Frame) { emit(boardMessage{Type: "frame", Frame: &f}) }),
		physics.OnCue(func(cue physics.Cue) { emit(boardMessage{Type: "cue", Cue: &cue}) }),
	)

	g.Go(func() error {
		return loop.Run(ctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case m := <-out:
				conn.SetWriteDeadline(time.Now().Add(cardWriteTimeout))
				if err := conn.WriteJSON(m); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		// The reader is the only goroutine that learns about a disconnect.
		defer cancel()
		for {
			var msg cardMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			in, err := msg.input()
			if err != nil {
				emit(boardMessage{Type: "error", Error: err.Error()})
				continue
			}
			if err := loop.Send(ctx, in); err != nil {
				if errors.Is(err, physics.ErrLoopClosed) || errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	})

	// Unblock the reader once anything else ends the session.
	g.Go(func() error {
		<-ctx.Done()
		conn.SetReadDeadline(time.Now())
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("Card board session ended")
	}
}
