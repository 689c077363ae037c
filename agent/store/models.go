package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Tenant is one office account row. Routing phone numbers are unique
// across active tenants (enforced by a partial unique index).
type Tenant struct {
	bun.BaseModel `bun:"table:tenants,alias:t"`

	ID              string    `bun:"id,pk,default:gen_random_uuid()"`
	Name            string    `bun:"name,notnull"`
	Constituency    string    `bun:"constituency,notnull"`
	PhoneNumber     string    `bun:"phone_number,notnull"`
	Email           string    `bun:"email"`
	Languages       []string  `bun:"languages,array"`
	GreetingMessage string    `bun:"greeting_message"`
	IsActive        bool      `bun:"is_active,notnull,default:true"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:now()"`
}

// Complaint lifecycle statuses. The intake core only writes new;
// the rest belong to the downstream CRUD surface.
const (
	ComplaintStatusNew        = "new"
	ComplaintStatusAssigned   = "assigned"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusCompleted  = "completed"
	ComplaintStatusVerified   = "verified"
	ComplaintStatusClosed     = "closed"
)

// Complaint is the durable output of a finished call cycle. The
// complaint number is unique per (tenant, year) by construction and
// additionally by a storage-level unique constraint.
type Complaint struct {
	bun.BaseModel `bun:"table:complaints,alias:c"`

	ID                  string    `bun:"id,pk,default:gen_random_uuid()"`
	TenantID            *string   `bun:"tenant_id"`
	ComplaintNumber     string    `bun:"complaint_number,notnull,unique"`
	CitizenName         string    `bun:"citizen_name,notnull"`
	CitizenPhone        string    `bun:"citizen_phone,notnull"`
	IssueType           string    `bun:"issue_type,notnull"`
	Description         string    `bun:"description,notnull"`
	Location            string    `bun:"location,notnull"`
	Landmark            *string   `bun:"landmark"`
	AudioURL            *string   `bun:"audio_url"`
	Transcript          *string   `bun:"transcript"`
	CallDurationSeconds *int      `bun:"call_duration_seconds"`
	Status              string    `bun:"status,notnull,default:'new'"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// CallLog records that a call happened, whether or not a complaint came
// out of it.
type CallLog struct {
	bun.BaseModel `bun:"table:call_logs,alias:cl"`

	ID              string    `bun:"id,pk,default:gen_random_uuid()"`
	TenantID        *string   `bun:"tenant_id"`
	CallerPhone     string    `bun:"caller_phone,notnull"`
	CalledNumber    string    `bun:"called_number,notnull"`
	CallStatus      string    `bun:"call_status,notnull"`
	DurationSeconds int       `bun:"duration_seconds"`
	ComplaintNumber *string   `bun:"complaint_number"`
	SessionID       string    `bun:"session_id"`
	StartedAt       time.Time `bun:"started_at,nullzero,notnull,default:now()"`
}

// ComplaintSequence backs atomic per-(tenant, year) numbering via an
// upsert that increments and returns the value in one statement.
type ComplaintSequence struct {
	bun.BaseModel `bun:"table:complaint_sequences,alias:cs"`

	TenantID string `bun:"tenant_id,pk"`
	Year     int    `bun:"year,pk"`
	Value    int64  `bun:"value,notnull"`
}
