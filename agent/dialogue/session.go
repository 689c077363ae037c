// Package dialogue holds the per-call session state and the
// slot-collection task machine.
package dialogue

import (
	"time"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/transcript"
)

// Stage is where the call currently is in the fixed linear pipeline.
type Stage string

const (
	StageGreeting        Stage = "greeting"
	StageCollectName     Stage = "collect_name"
	StageCollectIssue    Stage = "collect_issue"
	StageCollectLocation Stage = "collect_location"
	StageFinalizing      Stage = "finalizing"
	StageFollowUp        Stage = "follow_up"
	StageCompleted       Stage = "completed"
)

// Session is the mutable state of one active call. Owned exclusively by
// the orchestrator goroutine driving that call; destroyed with it.
type Session struct {
	ID          string
	Call        contractx.CallInfo
	Tenant      *contractx.Tenant
	CallerPhone string
	Recorder    *transcript.Recorder
	Stage       Stage
	StartedAt   time.Time
}

func NewSession(call contractx.CallInfo, now time.Time) *Session {
	started := call.StartedAt
	if started.IsZero() {
		started = now
	}
	return &Session{
		ID:        call.SessionID,
		Call:      call,
		Recorder:  transcript.NewRecorder(),
		Stage:     StageGreeting,
		StartedAt: started.UTC(),
	}
}

func (s *Session) SetStage(st Stage) {
	s.Stage = st
}

// Duration is the call length as of now, in whole seconds.
func (s *Session) Duration(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// AgentSaid records an agent turn on the transcript.
func (s *Session) AgentSaid(text string, now time.Time) {
	s.Recorder.Add(transcript.RoleAgent, text, now)
}

// CallerSaid records a caller turn on the transcript.
func (s *Session) CallerSaid(text string, now time.Time) {
	s.Recorder.Add(transcript.RoleCaller, text, now)
}
