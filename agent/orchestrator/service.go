// Package orchestrator drives one call from greeting to a confirmed,
// numbered complaint: a fixed linear pipeline of slot-collection tasks
// followed by the finalization graph.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	"github.com/sg19chess/mla-voice-saas/agent/address"
	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/dialogue"
	promptx "github.com/sg19chess/mla-voice-saas/agent/prompt"
)

// EventKind discriminates the structured callbacks the transport
// delivers into a running call.
type EventKind string

const (
	EventAnswer      EventKind = "answer"
	EventOutOfDomain EventKind = "out_of_domain"
	EventHangup      EventKind = "hangup"
)

// Event is one structured callback. The transport guarantees at most
// one in flight per session.
type Event struct {
	Kind      EventKind
	Utterance string
	Answer    contractx.StructuredAnswer
}

type Config struct {
	// SlotAttempts bounds re-prompts per task; <= 0 means unlimited
	// within the call's lifetime.
	SlotAttempts int `envconfig:"SLOT_ATTEMPTS" split_words:"true" default:"0"`
	// OfficeName is spoken in the greeting when no tenant resolves.
	OfficeName string `envconfig:"OFFICE_NAME" split_words:"true" default:"நகராட்சி"`
	// HonorificStyle selects the caller addressing strategy:
	// "neutral" (default) or "tamil".
	HonorificStyle string `envconfig:"HONORIFIC_STYLE" split_words:"true" default:"neutral"`
}

type Orchestrator struct {
	tenants contractx.TenantDirectory
	saver   contractx.ComplaintSaver
	prompts promptx.Set
	style   address.Style
	cfg     Config

	finalizeRunner compose.Runnable[finalizeInput, finalizeOutput]

	now func() time.Time
}

func New(tenants contractx.TenantDirectory, saver contractx.ComplaintSaver, cfg Config) (*Orchestrator, error) {
	if tenants == nil {
		return nil, errors.New("tenant directory is required")
	}
	if saver == nil {
		return nil, errors.New("complaint saver is required")
	}

	var style address.Style = address.Neutral{}
	if strings.EqualFold(strings.TrimSpace(cfg.HonorificStyle), "tamil") {
		style = address.TamilHeuristic{}
	}

	o := &Orchestrator{
		tenants: tenants,
		saver:   saver,
		prompts: promptx.LoadSet(),
		style:   style,
		cfg:     cfg,
		now:     time.Now,
	}

	runner, err := o.compileFinalizeGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.finalizeRunner = runner

	return o, nil
}

// RunCall drives one call end to end. events carries the transport's
// structured callbacks; RunCall is their single consumer, so no two
// tasks within the session ever run concurrently. Returns when the
// call completes or disconnects.
func (o *Orchestrator) RunCall(ctx context.Context, call contractx.CallInfo, tx contractx.Transport, events <-chan Event) error {
	sess := dialogue.NewSession(call, o.now())
	tx = &recordingTransport{inner: tx, sess: sess, now: o.now}

	tenant, err := o.tenants.ResolveTenant(ctx, call.RoutingNumber)
	if err != nil {
		// TenantUnresolved is not fatal: finalization proceeds under
		// fallback numbering.
		log.Warn().Err(err).
			Str("session_id", sess.ID).
			Str("routing_number", call.RoutingNumber).
			Msg("tenant not resolved for inbound call")
	}
	sess.Tenant = tenant

	o.say(ctx, sess, tx, o.greeting(tenant))

	callerName := ""
	for {
		result, disconnected := o.collectCycle(ctx, sess, tx, events, &callerName)

		out, ferr := o.finalize(ctx, sess, result, disconnected)
		if ferr != nil {
			log.Error().Err(ferr).Str("session_id", sess.ID).Msg("finalization failed")
		}

		if disconnected {
			sess.SetStage(dialogue.StageCompleted)
			return nil
		}

		o.say(ctx, sess, tx, out.Confirmation)

		sess.SetStage(dialogue.StageFollowUp)
		more, disconnected := o.awaitFollowUp(ctx, sess, tx, events)
		if disconnected {
			sess.SetStage(dialogue.StageCompleted)
			return nil
		}
		if !more {
			break
		}
	}

	o.say(ctx, sess, tx, o.prompts.Goodbye)
	sess.SetStage(dialogue.StageCompleted)
	if err := tx.End(ctx); err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Msg("session end signal failed")
	}
	return nil
}

// cycleResult carries one complaint cycle's collected slots.
type cycleResult struct {
	Name     contractx.NameResult
	Issue    contractx.IssueResult
	Location contractx.LocationResult
}

// collectCycle runs the three slot tasks strictly in sequence, carrying
// the caller's name into the issue prompt. A disconnect mid-task leaves
// the remaining slots at their defaults.
func (o *Orchestrator) collectCycle(ctx context.Context, sess *dialogue.Session, tx contractx.Transport, events <-chan Event, callerName *string) (cycleResult, bool) {
	slotCfg := dialogue.Config{MaxAttempts: o.cfg.SlotAttempts}
	out := cycleResult{}

	if *callerName == "" {
		sess.SetStage(dialogue.StageCollectName)
		nameTask := dialogue.NewNameTask(o.prompts.AskName, o.prompts.NameRedirect, slotCfg)
		res, disconnected := o.runTask(ctx, sess, tx, events, nameTask)
		out.Name = res.(contractx.NameResult)
		*callerName = out.Name.Name
		if disconnected {
			out.Issue = dialogue.NewIssueTask("", "", slotCfg).Default().(contractx.IssueResult)
			out.Location = dialogue.NewLocationTask("", "", slotCfg).Default().(contractx.LocationResult)
			return out, true
		}
	} else {
		out.Name = contractx.NameResult{Name: *callerName}
	}

	display := o.displayName(*callerName)

	sess.SetStage(dialogue.StageCollectIssue)
	issueTask := dialogue.NewIssueTask(o.prompts.FormatAskIssue(display), o.prompts.IssueRedirect, slotCfg)
	res, disconnected := o.runTask(ctx, sess, tx, events, issueTask)
	out.Issue = res.(contractx.IssueResult)
	if disconnected {
		out.Location = dialogue.NewLocationTask("", "", slotCfg).Default().(contractx.LocationResult)
		return out, true
	}

	sess.SetStage(dialogue.StageCollectLocation)
	locTask := dialogue.NewLocationTask(o.prompts.AskLocation, o.prompts.LocationRedirect, slotCfg)
	res, disconnected = o.runTask(ctx, sess, tx, events, locTask)
	out.Location = res.(contractx.LocationResult)
	return out, disconnected
}

// runTask enters a task and consumes events on its behalf until it
// completes or the call drops. Returns the result (the task's default
// on disconnect) and whether the call disconnected.
func (o *Orchestrator) runTask(ctx context.Context, sess *dialogue.Session, tx contractx.Transport, events <-chan Event, task dialogue.Task) (contractx.SlotResult, bool) {
	if err := task.Enter(ctx, tx); err != nil {
		log.Error().Err(err).Str("slot", string(task.Kind())).Msg("task enter failed")
		return task.Default(), false
	}

	for task.State() != contractx.TaskCompleted {
		select {
		case <-ctx.Done():
			return task.Default(), true
		case ev, ok := <-events:
			if !ok {
				return task.Default(), true
			}
			if disconnected := o.dispatchEvent(ctx, sess, tx, task, ev); disconnected {
				return task.Default(), true
			}
		}
	}
	return task.Result(), false
}

func (o *Orchestrator) dispatchEvent(ctx context.Context, sess *dialogue.Session, tx contractx.Transport, task dialogue.Task, ev Event) bool {
	if ev.Utterance != "" {
		sess.CallerSaid(ev.Utterance, o.now())
	}

	switch ev.Kind {
	case EventHangup:
		return true
	case EventOutOfDomain:
		if err := task.OnOutOfDomain(ctx, tx); err != nil {
			log.Error().Err(err).Str("slot", string(task.Kind())).Msg("out-of-domain handling failed")
		}
	case EventAnswer:
		err := task.OnStructuredAnswer(ctx, tx, ev.Answer)
		if err != nil {
			if errors.Is(err, contractx.ErrInvalidState) {
				// Contract violation, not caller input: abort loudly.
				log.Error().Err(err).Str("slot", string(task.Kind())).Msg("task contract violation")
				return false
			}
			log.Debug().Err(err).Str("slot", string(task.Kind())).Msg("answer not accepted")
		}
	}
	return false
}

// awaitFollowUp asks whether the caller wants to file another complaint
// and waits for an explicit opt-in.
func (o *Orchestrator) awaitFollowUp(ctx context.Context, sess *dialogue.Session, tx contractx.Transport, events <-chan Event) (more, disconnected bool) {
	o.say(ctx, sess, tx, o.prompts.FollowUp)

	for {
		select {
		case <-ctx.Done():
			return false, true
		case ev, ok := <-events:
			if !ok || ev.Kind == EventHangup {
				return false, true
			}
			if ev.Utterance != "" {
				sess.CallerSaid(ev.Utterance, o.now())
			}
			if ev.Kind != EventAnswer || ev.Answer.Tool != dialogue.ToolFollowUp {
				o.say(ctx, sess, tx, o.prompts.FollowUp)
				continue
			}
			switch strings.ToLower(ev.Answer.Field("more")) {
			case "yes", "true":
				return true, false
			default:
				return false, false
			}
		}
	}
}

// finalize runs the persistence graph. It uses a non-cancelable
// context so a caller hangup cannot abort the write that records it.
func (o *Orchestrator) finalize(ctx context.Context, sess *dialogue.Session, slots cycleResult, disconnected bool) (finalizeOutput, error) {
	out, err := o.finalizeRunner.Invoke(context.WithoutCancel(ctx), finalizeInput{
		Session:      sess,
		Slots:        slots,
		Disconnected: disconnected,
	})
	if err != nil {
		return finalizeOutput{}, fmt.Errorf("finalize complaint: %w", err)
	}
	return out, nil
}

func (o *Orchestrator) greeting(tenant *contractx.Tenant) string {
	if tenant != nil && strings.TrimSpace(tenant.Greeting) != "" {
		return tenant.Greeting
	}
	office := o.cfg.OfficeName
	if tenant != nil && strings.TrimSpace(tenant.Name) != "" {
		office = tenant.Name
	}
	return o.prompts.FormatGreeting(office)
}

func (o *Orchestrator) displayName(name string) string {
	if name == "" || name == dialogue.DefaultName {
		name = ""
	}
	h := o.style.Honorific(name)
	switch {
	case name == "" && h == "":
		return "நண்பரே"
	case name == "":
		return h
	case h == "":
		return name
	default:
		return name + " " + h
	}
}

func (o *Orchestrator) say(ctx context.Context, sess *dialogue.Session, tx contractx.Transport, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := tx.Say(ctx, text); err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Msg("prompt delivery failed")
	}
}

// recordingTransport mirrors every spoken prompt into the session
// transcript so tasks stay unaware of transcript bookkeeping.
type recordingTransport struct {
	inner contractx.Transport
	sess  *dialogue.Session
	now   func() time.Time
}

func (r *recordingTransport) Say(ctx context.Context, text string) error {
	if err := r.inner.Say(ctx, text); err != nil {
		return err
	}
	r.sess.AgentSaid(text, r.now())
	return nil
}

func (r *recordingTransport) End(ctx context.Context) error {
	return r.inner.End(ctx)
}
