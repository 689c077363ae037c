package contract

import (
	"strings"
	"time"
)

// SlotKind names one semantic unit of information a task collects.
type SlotKind string

const (
	SlotName     SlotKind = "name"
	SlotIssue    SlotKind = "issue"
	SlotLocation SlotKind = "location"
)

// TaskState is the lifecycle of one slot-collection task.
// Completed is terminal; a second transition into it is a contract
// violation (ErrInvalidState).
type TaskState string

const (
	TaskCreated        TaskState = "created"
	TaskAwaitingAnswer TaskState = "awaiting_answer"
	TaskCompleted      TaskState = "completed"
)

// SlotResult is the immutable value a completed task produces.
type SlotResult interface {
	Kind() SlotKind
}

type NameResult struct {
	Name string `json:"name"`
}

func (NameResult) Kind() SlotKind { return SlotName }

type IssueResult struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (IssueResult) Kind() SlotKind { return SlotIssue }

type LocationResult struct {
	Location string `json:"location"`
	Ward     string `json:"ward,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

func (LocationResult) Kind() SlotKind { return SlotLocation }

// StructuredAnswer is what the dialogue collaborator reports once it has
// parsed enough of the caller's speech: a named callback with string
// arguments matching the active task's declared parameters.
type StructuredAnswer struct {
	Tool   string            `json:"tool"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Field returns a trimmed argument value, or "" when absent.
func (a StructuredAnswer) Field(name string) string {
	if a.Fields == nil {
		return ""
	}
	return strings.TrimSpace(a.Fields[name])
}

// Participant is one remote leg of the call as the telephony layer sees it.
type Participant struct {
	Identity string `json:"identity"`
	Kind     string `json:"kind"`
}

const ParticipantKindSIP = "sip"

// CallInfo is the immutable session metadata the telephony layer hands us
// at call start. RoomName conventionally embeds the caller's number.
type CallInfo struct {
	SessionID     string        `json:"session_id"`
	RoomName      string        `json:"room_name"`
	RoutingNumber string        `json:"routing_number"`
	Participants  []Participant `json:"participants,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// Tenant is one office account. Read-only from the core's perspective.
type Tenant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Constituency  string   `json:"constituency"`
	RoutingNumber string   `json:"routing_number"`
	Languages     []string `json:"languages,omitempty"`
	Greeting      string   `json:"greeting,omitempty"`
	Active        bool     `json:"active"`
}

// ComplaintRecord is the durable complaint row handed to the record sink.
// Optional fields are nil when not collected, never empty strings.
type ComplaintRecord struct {
	TenantID        *string
	Number          string
	CitizenName     string
	CitizenPhone    string
	Category        string
	Description     string
	Location        string
	Landmark        *string
	Transcript      *string
	AudioURL        *string
	DurationSeconds int
	Status          string
}

// CallLogRecord records that a call happened, complaint or not.
type CallLogRecord struct {
	TenantID        *string
	CallerPhone     string
	RoutingNumber   string
	Status          string
	DurationSeconds int
	ComplaintNumber *string
	SessionID       string
}

// Call log statuses written by the core.
const (
	CallStatusCompleted    = "completed"
	CallStatusDisconnected = "disconnected"
)

// ComplaintDraft is everything the orchestrator assembled for one
// complaint cycle, before normalization and numbering.
type ComplaintDraft struct {
	Tenant        *Tenant
	SessionID     string
	RoutingNumber string
	CitizenName   string
	CitizenPhone  string
	IssuePhrase   string
	Description   string
	Location      string
	Ward          string
	Landmark      string
	Transcript    string
	Duration      time.Duration
	Disconnected  bool
}

// SaveResult reports the outcome of persisting a complaint. Reference is
// always non-empty; Degraded marks records that may not exist durably
// (fallback numbering fired or the sink rejected the write).
type SaveResult struct {
	Reference   string
	ComplaintID string
	Degraded    bool
}

// InterpretRequest asks the dialogue collaborator to turn one caller
// utterance into a structured callback.
type InterpretRequest struct {
	Utterance  string
	CallerName string
	Language   string
}
