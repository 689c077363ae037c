package contract

import "context"

// Transport is the spoken channel back to the caller. Implemented outside
// the core by the telephony/room session layer.
type Transport interface {
	// Say emits a spoken prompt to the caller.
	Say(ctx context.Context, text string) error
	// End signals the session to terminate after pending speech.
	End(ctx context.Context) error
}

// TenantDirectory resolves the owning office account for an inbound call.
type TenantDirectory interface {
	// ResolveTenant maps a routing (called) number to its tenant.
	// Returns ErrTenantUnresolved when no active tenant matches.
	ResolveTenant(ctx context.Context, routingNumber string) (*Tenant, error)
}

// SequenceSource hands out per-(tenant, year) sequence values. Must be
// atomic under concurrent callers for the same pair.
type SequenceSource interface {
	NextSequence(ctx context.Context, tenantID string, year int) (int64, error)
}

// RecordSink persists finalized records.
type RecordSink interface {
	InsertComplaint(ctx context.Context, rec ComplaintRecord) (string, error)
	InsertCallLog(ctx context.Context, rec CallLogRecord) error
}

// ComplaintSaver normalizes, numbers, and persists one assembled
// complaint. The returned SaveResult always carries a non-empty
// reference, even when persistence degraded.
type ComplaintSaver interface {
	Save(ctx context.Context, draft ComplaintDraft) (SaveResult, error)
}

// Interpreter is the language-model collaborator that turns a raw caller
// utterance into a structured callback. A nil answer with nil error means
// the utterance carried nothing actionable yet.
type Interpreter interface {
	Interpret(ctx context.Context, req InterpretRequest) (*StructuredAnswer, error)
}
