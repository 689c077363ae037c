package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/dialogue"
	"github.com/sg19chess/mla-voice-saas/agent/identity"
	promptx "github.com/sg19chess/mla-voice-saas/agent/prompt"
	"github.com/sg19chess/mla-voice-saas/agent/transcript"
)

type finalizeInput struct {
	Session      *dialogue.Session
	Slots        cycleResult
	Disconnected bool
}

type finalizeState struct {
	Session      *dialogue.Session
	Slots        cycleResult
	Disconnected bool

	CallerPhone string
	Transcript  string
	Save        contractx.SaveResult
}

type finalizeOutput struct {
	Confirmation string
	Save         contractx.SaveResult
}

func resolveIdentity(in finalizeInput) (*finalizeState, error) {
	st := &finalizeState{
		Session:      in.Session,
		Slots:        in.Slots,
		Disconnected: in.Disconnected,
	}
	st.CallerPhone = identity.ResolvePhone(in.Session.Call)
	st.Session.CallerPhone = st.CallerPhone
	return st, nil
}

func renderTranscript(st *finalizeState) (*finalizeState, error) {
	sum := transcript.Summary{
		Name:        st.Slots.Name.Name,
		Issue:       st.Slots.Issue.Category,
		Description: st.Slots.Issue.Description,
		Location:    st.Slots.Location.Location,
		Ward:        st.Slots.Location.Ward,
	}
	st.Transcript = transcript.Render(sum, st.Session.Recorder.Drain())
	return st, nil
}

func persistComplaint(ctx context.Context, st *finalizeState, saver contractx.ComplaintSaver, now func() time.Time) (*finalizeState, error) {
	st.Session.SetStage(dialogue.StageFinalizing)

	draft := contractx.ComplaintDraft{
		Tenant:        st.Session.Tenant,
		SessionID:     st.Session.ID,
		RoutingNumber: st.Session.Call.RoutingNumber,
		CitizenName:   st.Slots.Name.Name,
		CitizenPhone:  st.CallerPhone,
		IssuePhrase:   st.Slots.Issue.Category,
		Description:   st.Slots.Issue.Description,
		Location:      st.Slots.Location.Location,
		Ward:          st.Slots.Location.Ward,
		Landmark:      st.Slots.Location.Landmark,
		Transcript:    st.Transcript,
		Duration:      st.Session.Duration(now()),
		Disconnected:  st.Disconnected,
	}

	res, err := saver.Save(ctx, draft)
	if err != nil {
		// The saver degrades internally; an error here means even the
		// fallback path broke. Surface it but keep the call alive.
		log.Error().Err(err).Str("session_id", st.Session.ID).Msg("complaint save failed outright")
		return st, nil
	}
	st.Save = res
	return st, nil
}

func composeConfirmation(st *finalizeState, prompts promptx.Set, displayName func(string) string) (finalizeOutput, error) {
	out := finalizeOutput{Save: st.Save}
	if st.Disconnected || st.Save.Reference == "" {
		return out, nil
	}
	out.Confirmation = prompts.FormatConfirmation(displayName(st.Slots.Name.Name), st.Save.Reference)
	return out, nil
}
