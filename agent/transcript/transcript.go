// Package transcript accumulates the ordered dialogue turn log for one
// call, independent of slot semantics.
package transcript

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAgent  Role = "Agent"
	RoleCaller Role = "Caller"
)

type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Recorder is owned exclusively by its session's goroutine; no locking.
type Recorder struct {
	turns []Turn
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Add(role Role, text string, at time.Time) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.turns = append(r.turns, Turn{Role: role, Text: text, At: at.UTC()})
}

func (r *Recorder) Len() int {
	return len(r.turns)
}

// Drain returns the accumulated turns and resets the recorder, so a
// follow-up complaint cycle in the same call starts a fresh log.
func (r *Recorder) Drain() []Turn {
	turns := r.turns
	r.turns = nil
	return turns
}

// Summary is the structured header rendered ahead of the raw turn log.
type Summary struct {
	Name        string
	Issue       string
	Description string
	Location    string
	Ward        string
}

// Render serializes the transcript once, at finalization time.
func Render(sum Summary, turns []Turn) string {
	var b strings.Builder
	b.WriteString("=== SUMMARY ===\n")
	b.WriteString("Name: " + sum.Name + "\n")
	b.WriteString("Issue: " + sum.Issue + "\n")
	b.WriteString("Problem: " + sum.Description + "\n")
	b.WriteString("Location: " + sum.Location + "\n")
	b.WriteString("Ward: " + sum.Ward + "\n")
	b.WriteString("\n=== FULL CONVERSATION ===\n")
	for _, t := range turns {
		b.WriteString(string(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}
