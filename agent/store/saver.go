package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/taxonomy"
)

// insertRetries bounds re-allocation when the storage-level uniqueness
// constraint catches a numbering race.
const insertRetries = 3

// Saver normalizes and persists finalized complaints. Save never leaves
// the caller without a reference number: persistence failures degrade
// to a local reference instead of propagating.
type Saver struct {
	sink  contractx.RecordSink
	alloc *Allocator
}

func NewSaver(sink contractx.RecordSink, alloc *Allocator) *Saver {
	return &Saver{sink: sink, alloc: alloc}
}

func (s *Saver) Save(ctx context.Context, draft contractx.ComplaintDraft) (contractx.SaveResult, error) {
	rec := s.buildRecord(draft)

	var (
		number   string
		degraded bool
		id       string
		lastErr  error
	)

	for attempt := 0; attempt < insertRetries; attempt++ {
		number, degraded = s.alloc.Allocate(ctx, draft.Tenant)
		rec.Number = number

		id, lastErr = s.sink.InsertComplaint(ctx, rec)
		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, ErrNumberConflict) && !degraded {
			log.Warn().Str("reference", number).Msg("reference collision, re-allocating")
			continue
		}
		break
	}

	if lastErr != nil {
		// Data-loss risk, including exhausted conflict retries: the
		// caller gets a number but the record was not durably stored.
		// Logged loudly for operational follow-up.
		log.Error().Err(lastErr).
			Str("reference", number).
			Str("session_id", draft.SessionID).
			Msg("complaint not durably stored")
		degraded = true
		id = ""
	}

	s.writeCallLog(ctx, draft, number)

	return contractx.SaveResult{
		Reference:   number,
		ComplaintID: id,
		Degraded:    degraded,
	}, nil
}

func (s *Saver) buildRecord(draft contractx.ComplaintDraft) contractx.ComplaintRecord {
	rec := contractx.ComplaintRecord{
		CitizenName:  orUnknown(draft.CitizenName),
		CitizenPhone: orUnknown(draft.CitizenPhone),
		Category:     string(taxonomy.Normalize(draft.IssuePhrase)),
		Description:  strings.TrimSpace(draft.Description),
		Location:     ComposeLocation(draft.Location, draft.Ward),
		Landmark:     optional(draft.Landmark),
		Transcript:   optional(draft.Transcript),
		Status:       ComplaintStatusNew,
	}
	if draft.Tenant != nil {
		id := draft.Tenant.ID
		rec.TenantID = &id
	}
	if secs := int(draft.Duration.Seconds()); secs > 0 {
		rec.DurationSeconds = secs
	}
	return rec
}

func (s *Saver) writeCallLog(ctx context.Context, draft contractx.ComplaintDraft, number string) {
	status := contractx.CallStatusCompleted
	if draft.Disconnected {
		status = contractx.CallStatusDisconnected
	}
	rec := contractx.CallLogRecord{
		CallerPhone:     orUnknown(draft.CitizenPhone),
		RoutingNumber:   draft.RoutingNumber,
		Status:          status,
		DurationSeconds: int(draft.Duration.Seconds()),
		ComplaintNumber: optional(number),
		SessionID:       draft.SessionID,
	}
	if draft.Tenant != nil {
		id := draft.Tenant.ID
		rec.TenantID = &id
	}
	if err := s.sink.InsertCallLog(ctx, rec); err != nil {
		log.Error().Err(err).Str("session_id", draft.SessionID).Msg("call log not recorded")
	}
}

// ComposeLocation merges ward and location into the stored composite
// form, "Ward {ward}, {location}", or the location verbatim.
func ComposeLocation(location, ward string) string {
	location = strings.TrimSpace(location)
	ward = strings.TrimSpace(ward)
	if ward == "" {
		return location
	}
	return fmt.Sprintf("Ward %s, %s", ward, location)
}

// optional maps empty strings to nil so the store distinguishes
// "not collected" from "collected as empty".
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
