package prompt

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed template/greeting.txt
	greetingRaw string

	//go:embed template/ask_name.txt
	askNameRaw string

	//go:embed template/name_redirect.txt
	nameRedirectRaw string

	//go:embed template/ask_issue.txt
	askIssueRaw string

	//go:embed template/issue_redirect.txt
	issueRedirectRaw string

	//go:embed template/ask_location.txt
	askLocationRaw string

	//go:embed template/location_redirect.txt
	locationRedirectRaw string

	//go:embed template/confirmation.txt
	confirmationRaw string

	//go:embed template/follow_up.txt
	followUpRaw string

	//go:embed template/goodbye.txt
	goodbyeRaw string
)

// Set holds the spoken prompt templates for one call flow. Greeting,
// AskIssue, and Confirmation are fmt templates; the rest are literal.
type Set struct {
	Greeting         string
	AskName          string
	NameRedirect     string
	AskIssue         string
	IssueRedirect    string
	AskLocation      string
	LocationRedirect string
	Confirmation     string
	FollowUp         string
	Goodbye          string
}

// LoadSet returns the embedded templates, trimmed. Safe to call
// concurrently; the embed is compile-time.
func LoadSet() Set {
	return Set{
		Greeting:         strings.TrimSpace(greetingRaw),
		AskName:          strings.TrimSpace(askNameRaw),
		NameRedirect:     strings.TrimSpace(nameRedirectRaw),
		AskIssue:         strings.TrimSpace(askIssueRaw),
		IssueRedirect:    strings.TrimSpace(issueRedirectRaw),
		AskLocation:      strings.TrimSpace(askLocationRaw),
		LocationRedirect: strings.TrimSpace(locationRedirectRaw),
		Confirmation:     strings.TrimSpace(confirmationRaw),
		FollowUp:         strings.TrimSpace(followUpRaw),
		Goodbye:          strings.TrimSpace(goodbyeRaw),
	}
}

// FormatGreeting fills the office name into the greeting template.
func (s Set) FormatGreeting(officeName string) string {
	return fmt.Sprintf(s.Greeting, officeName)
}

// FormatAskIssue addresses the caller by the name collected earlier.
func (s Set) FormatAskIssue(callerName string) string {
	return fmt.Sprintf(s.AskIssue, callerName)
}

// FormatConfirmation fills in the caller's name and the reference number.
func (s Set) FormatConfirmation(callerName, reference string) string {
	return fmt.Sprintf(s.Confirmation, callerName, reference)
}
