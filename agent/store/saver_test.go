package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

type fakeSink struct {
	complaints []contractx.ComplaintRecord
	logs       []contractx.CallLogRecord

	insertErrs []error
	inserts    int
	logErr     error
}

func (f *fakeSink) InsertComplaint(ctx context.Context, rec contractx.ComplaintRecord) (string, error) {
	f.inserts++
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return "", err
		}
	}
	f.complaints = append(f.complaints, rec)
	return fmt.Sprintf("id-%d", len(f.complaints)), nil
}

func (f *fakeSink) InsertCallLog(ctx context.Context, rec contractx.CallLogRecord) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, rec)
	return nil
}

func testDraft() contractx.ComplaintDraft {
	return contractx.ComplaintDraft{
		Tenant:        testTenant(),
		SessionID:     "session-1",
		RoutingNumber: "+914428883333",
		CitizenName:   "லட்சுமி",
		CitizenPhone:  "+919876543210",
		IssuePhrase:   "தண்ணீர்",
		Description:   "மூன்று நாட்களாக தண்ணீர் இல்லை",
		Location:      "Anna Nagar 4th Street",
		Ward:          "12",
		Transcript:    "=== SUMMARY ===\n",
		Duration:      95 * time.Second,
	}
}

func TestSaveHappyPath(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	saver := NewSaver(sink, NewAllocator(&fakeSequence{}))

	res, err := saver.Save(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !refPattern.MatchString(res.Reference) {
		t.Fatalf("reference %q does not match canonical pattern", res.Reference)
	}
	if res.Degraded {
		t.Fatal("unexpected degraded save")
	}
	if res.ComplaintID != "id-1" {
		t.Fatalf("complaint id = %q, want id-1", res.ComplaintID)
	}

	if len(sink.complaints) != 1 {
		t.Fatalf("expected one stored complaint, got %d", len(sink.complaints))
	}
	rec := sink.complaints[0]
	if rec.Category != "water" {
		t.Fatalf("category = %q, want water", rec.Category)
	}
	if rec.Location != "Ward 12, Anna Nagar 4th Street" {
		t.Fatalf("location = %q", rec.Location)
	}
	if rec.Transcript == nil || *rec.Transcript == "" {
		t.Fatal("transcript not stored")
	}
	if rec.Landmark != nil {
		t.Fatalf("empty landmark stored as %q, want nil", *rec.Landmark)
	}
	if rec.Status != ComplaintStatusNew {
		t.Fatalf("status = %q, want %q", rec.Status, ComplaintStatusNew)
	}
	if rec.DurationSeconds != 95 {
		t.Fatalf("duration = %d, want 95", rec.DurationSeconds)
	}
	if rec.TenantID == nil || *rec.TenantID != "tenant-1" {
		t.Fatalf("tenant id = %v", rec.TenantID)
	}

	if len(sink.logs) != 1 {
		t.Fatalf("expected one call log, got %d", len(sink.logs))
	}
	cl := sink.logs[0]
	if cl.Status != contractx.CallStatusCompleted {
		t.Fatalf("call status = %q, want completed", cl.Status)
	}
	if cl.ComplaintNumber == nil || *cl.ComplaintNumber != res.Reference {
		t.Fatalf("call log number = %v, want %q", cl.ComplaintNumber, res.Reference)
	}
}

func TestSaveReallocatesOnNumberConflict(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{insertErrs: []error{ErrNumberConflict}}
	saver := NewSaver(sink, NewAllocator(&fakeSequence{}))

	res, err := saver.Save(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if res.Degraded {
		t.Fatal("conflict retry must not degrade the save")
	}
	if sink.inserts != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", sink.inserts)
	}
	if len(sink.complaints) != 1 {
		t.Fatalf("expected one stored complaint, got %d", len(sink.complaints))
	}
	// the retried insert carries a fresh number
	if sink.complaints[0].Number != res.Reference {
		t.Fatalf("stored number %q != returned reference %q", sink.complaints[0].Number, res.Reference)
	}
}

func TestSaveExhaustedConflictRetriesDegrades(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{insertErrs: []error{
		ErrNumberConflict,
		ErrNumberConflict,
		ErrNumberConflict,
	}}
	saver := NewSaver(sink, NewAllocator(&fakeSequence{}))

	res, err := saver.Save(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if sink.inserts != 3 {
		t.Fatalf("expected 3 insert attempts, got %d", sink.inserts)
	}
	if len(sink.complaints) != 0 {
		t.Fatalf("expected no stored complaint, got %d", len(sink.complaints))
	}
	if !res.Degraded {
		t.Fatal("record never stored must be reported degraded")
	}
	if res.ComplaintID != "" {
		t.Fatalf("complaint id = %q, want empty", res.ComplaintID)
	}
	if res.Reference == "" {
		t.Fatal("caller must still receive a reference")
	}
	if len(sink.logs) != 1 {
		t.Fatal("call log must still be attempted")
	}
}

func TestSaveSinkFailureStillYieldsReference(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{insertErrs: []error{
		contractx.ErrPersistenceUnavailable,
		contractx.ErrPersistenceUnavailable,
		contractx.ErrPersistenceUnavailable,
	}}
	saver := NewSaver(sink, NewAllocator(&fakeSequence{}))

	res, err := saver.Save(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if res.Reference == "" {
		t.Fatal("caller must still receive a reference")
	}
	if !res.Degraded {
		t.Fatal("expected degraded save")
	}
	if res.ComplaintID != "" {
		t.Fatalf("complaint id = %q, want empty", res.ComplaintID)
	}
	if len(sink.logs) != 1 {
		t.Fatal("call log must still be attempted")
	}
}

func TestSaveDisconnectedCall(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	saver := NewSaver(sink, NewAllocator(&fakeSequence{}))

	draft := testDraft()
	draft.Disconnected = true
	draft.CitizenName = ""
	draft.CitizenPhone = ""

	res, err := saver.Save(context.Background(), draft)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if res.Reference == "" {
		t.Fatal("disconnected call still gets a reference")
	}

	rec := sink.complaints[0]
	if rec.CitizenName != "unknown" || rec.CitizenPhone != "unknown" {
		t.Fatalf("missing caller fields not defaulted: %q %q", rec.CitizenName, rec.CitizenPhone)
	}
	if sink.logs[0].Status != contractx.CallStatusDisconnected {
		t.Fatalf("call status = %q, want disconnected", sink.logs[0].Status)
	}
}

func TestComposeLocation(t *testing.T) {
	t.Parallel()

	if got := ComposeLocation("Anna Nagar", "12"); got != "Ward 12, Anna Nagar" {
		t.Fatalf("ComposeLocation() = %q", got)
	}
	if got := ComposeLocation("Anna Nagar", ""); got != "Anna Nagar" {
		t.Fatalf("ComposeLocation() = %q", got)
	}
	if got := ComposeLocation("  Anna Nagar  ", " 12 "); got != "Ward 12, Anna Nagar" {
		t.Fatalf("ComposeLocation() = %q", got)
	}
}
