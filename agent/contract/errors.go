package contract

import "errors"

var (
	// ErrInvalidState marks a programming-contract violation, e.g. a slot
	// task completed twice. It aborts the task invocation; everything else
	// below degrades instead.
	ErrInvalidState = errors.New("invalid task state transition")

	// ErrAmbiguousInput means the caller's utterance did not satisfy the
	// active task's required fields or fell outside the issue taxonomy.
	// Recovered locally by re-prompting.
	ErrAmbiguousInput = errors.New("caller input is ambiguous")

	// ErrIdentityUnresolved means no caller phone number could be
	// determined from any identity source.
	ErrIdentityUnresolved = errors.New("caller identity unresolved")

	// ErrTenantUnresolved means the routing number maps to no known
	// active tenant.
	ErrTenantUnresolved = errors.New("tenant unresolved")

	// ErrPersistenceUnavailable means the record sink or sequence source
	// is unreachable or rejected the operation.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
