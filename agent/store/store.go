// Package store persists tenants, complaints, and call logs in Postgres
// and hands out atomic per-tenant sequence values.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

// Store implements contract.TenantDirectory, contract.SequenceSource,
// and contract.RecordSink on top of bun/Postgres.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ResolveTenant(ctx context.Context, routingNumber string) (*contractx.Tenant, error) {
	routingNumber = strings.TrimSpace(routingNumber)
	if routingNumber == "" {
		return nil, fmt.Errorf("%w: empty routing number", contractx.ErrTenantUnresolved)
	}

	var row Tenant
	err := s.db.NewSelect().
		Model(&row).
		Where("t.phone_number = ?", routingNumber).
		Where("t.is_active").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: routing number %s", contractx.ErrTenantUnresolved, routingNumber)
		}
		return nil, fmt.Errorf("%w: resolve tenant: %v", contractx.ErrPersistenceUnavailable, err)
	}

	return toContractTenant(&row), nil
}

// DefaultTenant returns the oldest active tenant, for single-tenant
// deployments where the routing number carries no tenant signal.
func (s *Store) DefaultTenant(ctx context.Context) (*contractx.Tenant, error) {
	var row Tenant
	err := s.db.NewSelect().
		Model(&row).
		Where("t.is_active").
		Order("t.created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active tenants", contractx.ErrTenantUnresolved)
		}
		return nil, fmt.Errorf("%w: default tenant: %v", contractx.ErrPersistenceUnavailable, err)
	}
	return toContractTenant(&row), nil
}

// NextSequence increments and returns the per-(tenant, year) counter in
// a single upsert, so concurrent calls for the same pair serialize on
// the database row instead of racing a count-then-insert.
func (s *Store) NextSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	seq := ComplaintSequence{TenantID: tenantID, Year: year, Value: 1}
	_, err := s.db.NewInsert().
		Model(&seq).
		On("CONFLICT (tenant_id, year) DO UPDATE").
		Set("value = cs.value + 1").
		Returning("value").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: next sequence tenant=%s year=%d: %v",
			contractx.ErrPersistenceUnavailable, tenantID, year, err)
	}
	return seq.Value, nil
}

func (s *Store) InsertComplaint(ctx context.Context, rec contractx.ComplaintRecord) (string, error) {
	row := Complaint{
		TenantID:        rec.TenantID,
		ComplaintNumber: rec.Number,
		CitizenName:     rec.CitizenName,
		CitizenPhone:    rec.CitizenPhone,
		IssueType:       rec.Category,
		Description:     rec.Description,
		Location:        rec.Location,
		Landmark:        rec.Landmark,
		AudioURL:        rec.AudioURL,
		Transcript:      rec.Transcript,
		Status:          rec.Status,
	}
	if rec.DurationSeconds > 0 {
		d := rec.DurationSeconds
		row.CallDurationSeconds = &d
	}

	_, err := s.db.NewInsert().
		Model(&row).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			// The storage-level constraint caught a numbering race;
			// the allocator retries with a fresh sequence value.
			return "", fmt.Errorf("%w: complaint number %s", ErrNumberConflict, rec.Number)
		}
		return "", fmt.Errorf("%w: insert complaint: %v", contractx.ErrPersistenceUnavailable, err)
	}
	return row.ID, nil
}

func (s *Store) InsertCallLog(ctx context.Context, rec contractx.CallLogRecord) error {
	row := CallLog{
		TenantID:        rec.TenantID,
		CallerPhone:     rec.CallerPhone,
		CalledNumber:    rec.RoutingNumber,
		CallStatus:      rec.Status,
		DurationSeconds: rec.DurationSeconds,
		ComplaintNumber: rec.ComplaintNumber,
		SessionID:       rec.SessionID,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("%w: insert call log: %v", contractx.ErrPersistenceUnavailable, err)
	}
	return nil
}

// ErrNumberConflict marks a complaint-number uniqueness violation.
var ErrNumberConflict = errors.New("complaint number conflict")

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

func toContractTenant(row *Tenant) *contractx.Tenant {
	return &contractx.Tenant{
		ID:            row.ID,
		Name:          row.Name,
		Constituency:  row.Constituency,
		RoutingNumber: row.PhoneNumber,
		Languages:     row.Languages,
		Greeting:      row.GreetingMessage,
		Active:        row.IsActive,
	}
}
