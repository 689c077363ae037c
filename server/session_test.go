package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/dialogue"
	"github.com/sg19chess/mla-voice-saas/agent/orchestrator"
)

type fakeInterpreter struct {
	answer *contractx.StructuredAnswer
	err    error
	reqs   []contractx.InterpretRequest
}

func (f *fakeInterpreter) Interpret(ctx context.Context, req contractx.InterpretRequest) (*contractx.StructuredAnswer, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func TestInterpretMapsAnswer(t *testing.T) {
	t.Parallel()

	interp := &fakeInterpreter{answer: &contractx.StructuredAnswer{
		Tool:   dialogue.ToolGotIssue,
		Fields: map[string]string{"issue_type": "water", "description": "no water"},
	}}
	sess := newCallSession("s1", nil, nil, interp)

	ev := sess.interpret(context.Background(), "தண்ணீர் வரவில்லை")
	if ev.Kind != orchestrator.EventAnswer {
		t.Fatalf("event kind = %s, want answer", ev.Kind)
	}
	if ev.Utterance != "தண்ணீர் வரவில்லை" {
		t.Fatalf("utterance = %q", ev.Utterance)
	}
	if ev.Answer.Tool != dialogue.ToolGotIssue {
		t.Fatalf("tool = %q", ev.Answer.Tool)
	}
}

func TestInterpretNothingActionableIsOutOfDomain(t *testing.T) {
	t.Parallel()

	sess := newCallSession("s1", nil, nil, &fakeInterpreter{answer: nil})
	ev := sess.interpret(context.Background(), "umm")
	if ev.Kind != orchestrator.EventOutOfDomain {
		t.Fatalf("event kind = %s, want out_of_domain", ev.Kind)
	}
}

func TestInterpretFailureDegradesToOutOfDomain(t *testing.T) {
	t.Parallel()

	sess := newCallSession("s1", nil, nil, &fakeInterpreter{err: errors.New("upstream timeout")})
	ev := sess.interpret(context.Background(), "hello")
	if ev.Kind != orchestrator.EventOutOfDomain {
		t.Fatalf("event kind = %s, want out_of_domain", ev.Kind)
	}
	if ev.Utterance != "hello" {
		t.Fatalf("utterance %q must survive for the transcript", ev.Utterance)
	}
}

func TestAwaitStartTimesOutOnSilentConnection(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()

		sess := newCallSession("s1", conn, nil, nil)
		sess.startTimeout = 100 * time.Millisecond
		_, err = sess.awaitStart()
		errCh <- err
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// Client connects but never sends a start frame.
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("awaitStart returned without a start frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("awaitStart did not give up on a silent connection")
	}
}

func TestInterpretRemembersCallerName(t *testing.T) {
	t.Parallel()

	interp := &fakeInterpreter{answer: &contractx.StructuredAnswer{
		Tool:   dialogue.ToolGotName,
		Fields: map[string]string{"name": "லட்சுமி"},
	}}
	sess := newCallSession("s1", nil, nil, interp)

	sess.interpret(context.Background(), "என் பெயர் லட்சுமி")
	sess.interpret(context.Background(), "தண்ணீர் பிரச்சனை")

	if len(interp.reqs) != 2 {
		t.Fatalf("expected 2 interpret calls, got %d", len(interp.reqs))
	}
	if interp.reqs[0].CallerName != "" {
		t.Fatalf("first call already carried a name: %q", interp.reqs[0].CallerName)
	}
	if interp.reqs[1].CallerName != "லட்சுமி" {
		t.Fatalf("second call caller name = %q", interp.reqs[1].CallerName)
	}
}
