package dialogue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

// Task collects exactly one semantic unit of information over one or
// more conversational turns. Implementations are single-goroutine: the
// orchestrator drives Enter and the On* handlers serially.
type Task interface {
	Kind() contractx.SlotKind
	State() contractx.TaskState

	// Enter emits the targeted prompt for the missing slot.
	Enter(ctx context.Context, tx contractx.Transport) error

	// OnStructuredAnswer handles a parsed answer from the dialogue
	// collaborator. On success the task completes; on malformed or
	// out-of-domain input it re-prompts and stays AwaitingAnswer.
	OnStructuredAnswer(ctx context.Context, tx contractx.Transport, ans contractx.StructuredAnswer) error

	// OnOutOfDomain emits the redirect prompt without completing.
	OnOutOfDomain(ctx context.Context, tx contractx.Transport) error

	// Result is valid once State() == TaskCompleted.
	Result() contractx.SlotResult

	// Default is the substitute value for degraded completion.
	Default() contractx.SlotResult
}

// Config bounds the retry loop. MaxAttempts <= 0 means unlimited within
// the call's own lifetime.
type Config struct {
	MaxAttempts int
}

// slotTask carries the state machine shared by all slot kinds:
// Created -> AwaitingAnswer -> Completed, with a no-exit loop through
// AwaitingAnswer on malformed or out-of-domain answers.
type slotTask struct {
	kind        contractx.SlotKind
	state       contractx.TaskState
	result      contractx.SlotResult
	fallback    contractx.SlotResult
	prompt      string
	redirect    string
	attempts    int
	maxAttempts int
}

func newSlotTask(kind contractx.SlotKind, prompt, redirect string, fallback contractx.SlotResult, cfg Config) slotTask {
	return slotTask{
		kind:        kind,
		state:       contractx.TaskCreated,
		fallback:    fallback,
		prompt:      prompt,
		redirect:    redirect,
		maxAttempts: cfg.MaxAttempts,
	}
}

func (t *slotTask) Kind() contractx.SlotKind      { return t.kind }
func (t *slotTask) State() contractx.TaskState    { return t.state }
func (t *slotTask) Result() contractx.SlotResult  { return t.result }
func (t *slotTask) Default() contractx.SlotResult { return t.fallback }

func (t *slotTask) requireAwaiting() error {
	if t.state != contractx.TaskAwaitingAnswer {
		return fmt.Errorf("%w: answer on %s task in state %s", contractx.ErrInvalidState, t.kind, t.state)
	}
	return nil
}

func (t *slotTask) Enter(ctx context.Context, tx contractx.Transport) error {
	if t.state != contractx.TaskCreated {
		return fmt.Errorf("%w: enter on %s task in state %s", contractx.ErrInvalidState, t.kind, t.state)
	}
	if err := tx.Say(ctx, t.prompt); err != nil {
		return err
	}
	t.state = contractx.TaskAwaitingAnswer
	return nil
}

// Complete transitions the task to its terminal state exactly once.
func (t *slotTask) Complete(res contractx.SlotResult) error {
	if t.state == contractx.TaskCompleted {
		return fmt.Errorf("%w: %s task completed twice", contractx.ErrInvalidState, t.kind)
	}
	t.state = contractx.TaskCompleted
	t.result = res
	return nil
}

func (t *slotTask) OnOutOfDomain(ctx context.Context, tx contractx.Transport) error {
	if t.state != contractx.TaskAwaitingAnswer {
		return fmt.Errorf("%w: out-of-domain on %s task in state %s", contractx.ErrInvalidState, t.kind, t.state)
	}
	return t.retry(ctx, tx)
}

// retry re-prompts, or degrades to the fallback value once the attempt
// budget is spent. Never surfaces an error to the caller.
func (t *slotTask) retry(ctx context.Context, tx contractx.Transport) error {
	t.attempts++
	if t.maxAttempts > 0 && t.attempts >= t.maxAttempts {
		log.Warn().
			Str("slot", string(t.kind)).
			Int("attempts", t.attempts).
			Msg("slot attempts exhausted, degrading to default")
		return t.Complete(t.fallback)
	}
	return tx.Say(ctx, t.redirect)
}
