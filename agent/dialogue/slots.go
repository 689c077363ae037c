package dialogue

import (
	"context"
	"fmt"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/taxonomy"
)

// Callback names the dialogue collaborator reports answers under.
const (
	ToolGotName     = "got_name"
	ToolGotIssue    = "got_issue"
	ToolGotLocation = "got_location"
	ToolOutOfDomain = "out_of_domain"
	ToolFollowUp    = "follow_up"
)

// DefaultName substitutes for a name that was never collected.
const DefaultName = "unknown"

// NameTask collects the caller's name.
type NameTask struct {
	slotTask
}

func NewNameTask(prompt, redirect string, cfg Config) *NameTask {
	return &NameTask{
		slotTask: newSlotTask(contractx.SlotName, prompt, redirect,
			contractx.NameResult{Name: DefaultName}, cfg),
	}
}

func (t *NameTask) OnStructuredAnswer(ctx context.Context, tx contractx.Transport, ans contractx.StructuredAnswer) error {
	if err := t.requireAwaiting(); err != nil {
		return err
	}
	name := ans.Field("name")
	if ans.Tool != ToolGotName || name == "" {
		if err := t.retry(ctx, tx); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s callback", contractx.ErrAmbiguousInput, ToolGotName)
	}
	return t.Complete(contractx.NameResult{Name: name})
}

// IssueTask collects the complaint category and description. Phrases
// outside the taxonomy loop through the redirect without completing.
type IssueTask struct {
	slotTask
}

func NewIssueTask(prompt, redirect string, cfg Config) *IssueTask {
	return &IssueTask{
		slotTask: newSlotTask(contractx.SlotIssue, prompt, redirect,
			contractx.IssueResult{Category: string(taxonomy.CategoryOther)}, cfg),
	}
}

func (t *IssueTask) OnStructuredAnswer(ctx context.Context, tx contractx.Transport, ans contractx.StructuredAnswer) error {
	if err := t.requireAwaiting(); err != nil {
		return err
	}
	issue := ans.Field("issue_type")
	description := ans.Field("description")
	if ans.Tool != ToolGotIssue || issue == "" || description == "" {
		if err := t.retry(ctx, tx); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s callback", contractx.ErrAmbiguousInput, ToolGotIssue)
	}
	cat, ok := taxonomy.Resolve(issue)
	if !ok {
		if err := t.OnOutOfDomain(ctx, tx); err != nil {
			return err
		}
		return fmt.Errorf("%w: issue %q outside taxonomy", contractx.ErrAmbiguousInput, issue)
	}
	return t.Complete(contractx.IssueResult{
		Category:    string(cat),
		Description: description,
	})
}

// LocationTask collects the location and the optional ward number.
type LocationTask struct {
	slotTask
}

func NewLocationTask(prompt, redirect string, cfg Config) *LocationTask {
	return &LocationTask{
		slotTask: newSlotTask(contractx.SlotLocation, prompt, redirect,
			contractx.LocationResult{Location: DefaultName}, cfg),
	}
}

func (t *LocationTask) OnStructuredAnswer(ctx context.Context, tx contractx.Transport, ans contractx.StructuredAnswer) error {
	if err := t.requireAwaiting(); err != nil {
		return err
	}
	location := ans.Field("location")
	if ans.Tool != ToolGotLocation || location == "" {
		if err := t.retry(ctx, tx); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s callback", contractx.ErrAmbiguousInput, ToolGotLocation)
	}
	return t.Complete(contractx.LocationResult{
		Location: location,
		Ward:     ans.Field("ward"),
		Landmark: ans.Field("landmark"),
	})
}
