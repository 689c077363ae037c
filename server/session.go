package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/dialogue"
	"github.com/sg19chess/mla-voice-saas/agent/orchestrator"
)

// Frame types on the call socket. The telephony edge sends start,
// utterance, and hangup; the gateway replies with say and end.
const (
	frameStart     = "start"
	frameUtterance = "utterance"
	frameHangup    = "hangup"
	frameSay       = "say"
	frameEnd       = "end"
)

type inboundFrame struct {
	Type           string `json:"type"`
	RoomName       string `json:"room_name,omitempty"`
	RoutingNumber  string `json:"routing_number,omitempty"`
	CallerIdentity string `json:"caller_identity,omitempty"`
	Text           string `json:"text,omitempty"`
}

type outboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// startFrameTimeout bounds how long a fresh connection may sit silent
// before its session slot is reclaimed.
const startFrameTimeout = 10 * time.Second

type callSession struct {
	ID   string
	conn *websocket.Conn

	orch   *orchestrator.Orchestrator
	interp contractx.Interpreter

	writeMu   sync.Mutex
	closeOnce sync.Once

	startTimeout time.Duration

	// callerName feeds back into interpretation once the caller has
	// identified themselves.
	callerName string
}

func newCallSession(id string, conn *websocket.Conn, orch *orchestrator.Orchestrator, interp contractx.Interpreter) *callSession {
	return &callSession{ID: id, conn: conn, orch: orch, interp: interp, startTimeout: startFrameTimeout}
}

// run owns the connection's read loop and drives the orchestrator for
// the lifetime of the call. It returns when the call ends either side.
func (s *callSession) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	call, err := s.awaitStart()
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("call setup failed")
		return
	}

	events := make(chan orchestrator.Event)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		if err := s.orch.RunCall(ctx, call, &wsTransport{sess: s}, events); err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("call run failed")
		}
	}()

	s.readLoop(ctx, events, runDone)

	cancel()
	<-runDone
}

// awaitStart reads the opening frame carrying call metadata.
func (s *callSession) awaitStart() (contractx.CallInfo, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(s.startTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return contractx.CallInfo{}, fmt.Errorf("read start frame: %w", err)
	}

	var frame inboundFrame
	if err := sonic.Unmarshal(raw, &frame); err != nil {
		return contractx.CallInfo{}, fmt.Errorf("decode start frame: %w", err)
	}
	if frame.Type != frameStart {
		return contractx.CallInfo{}, fmt.Errorf("expected start frame, got %q", frame.Type)
	}

	call := contractx.CallInfo{
		SessionID:     s.ID,
		RoomName:      frame.RoomName,
		RoutingNumber: frame.RoutingNumber,
		StartedAt:     time.Now(),
	}
	if frame.CallerIdentity != "" {
		call.Participants = []contractx.Participant{{
			Identity: frame.CallerIdentity,
			Kind:     contractx.ParticipantKindSIP,
		}}
	}
	return call, nil
}

func (s *callSession) readLoop(ctx context.Context, events chan<- orchestrator.Event, runDone <-chan struct{}) {
	deliver := func(ev orchestrator.Event) bool {
		select {
		case events <- ev:
			return true
		case <-runDone:
			return false
		}
	}

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			deliver(orchestrator.Event{Kind: orchestrator.EventHangup})
			return
		}

		var frame inboundFrame
		if err := sonic.Unmarshal(raw, &frame); err != nil {
			log.Debug().Err(err).Str("session_id", s.ID).Msg("undecodable frame dropped")
			continue
		}

		switch frame.Type {
		case frameHangup:
			deliver(orchestrator.Event{Kind: orchestrator.EventHangup})
			return
		case frameUtterance:
			if !deliver(s.interpret(ctx, frame.Text)) {
				return
			}
		default:
			log.Debug().Str("session_id", s.ID).Str("type", frame.Type).Msg("unexpected frame dropped")
		}
	}
}

// interpret maps one utterance to an orchestrator event. Interpretation
// failures degrade to out-of-domain so the caller is re-prompted rather
// than left in silence.
func (s *callSession) interpret(ctx context.Context, text string) orchestrator.Event {
	answer, err := s.interp.Interpret(ctx, contractx.InterpretRequest{
		Utterance:  text,
		CallerName: s.callerName,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("utterance interpretation failed")
		return orchestrator.Event{Kind: orchestrator.EventOutOfDomain, Utterance: text}
	}
	if answer == nil || answer.Tool == dialogue.ToolOutOfDomain {
		return orchestrator.Event{Kind: orchestrator.EventOutOfDomain, Utterance: text}
	}

	if answer.Tool == dialogue.ToolGotName {
		if name := answer.Field("name"); name != "" {
			s.callerName = name
		}
	}

	return orchestrator.Event{
		Kind:      orchestrator.EventAnswer,
		Utterance: text,
		Answer:    *answer,
	}
}

func (s *callSession) writeFrame(frame outboundFrame) error {
	payload, err := sonic.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", frame.Type, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *callSession) close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

// wsTransport speaks to the caller over the session's websocket.
type wsTransport struct {
	sess *callSession
}

var _ contractx.Transport = (*wsTransport)(nil)

func (t *wsTransport) Say(ctx context.Context, text string) error {
	return t.sess.writeFrame(outboundFrame{Type: frameSay, Text: text})
}

func (t *wsTransport) End(ctx context.Context) error {
	if err := t.sess.writeFrame(outboundFrame{Type: frameEnd}); err != nil {
		return err
	}
	t.sess.close()
	return nil
}
