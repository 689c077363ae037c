// Package address decides how the agent addresses a caller. The
// honorific guess is a heuristic with no authoritative source, so it
// lives behind a strategy interface with a neutral default.
package address

import "strings"

// Style produces the honorific appended after a caller's name in
// prompts, e.g. "சார்" or "மேடம்". Empty means address by name only.
type Style interface {
	Honorific(name string) string
}

// Neutral never guesses; callers are addressed by name alone.
type Neutral struct{}

func (Neutral) Honorific(string) string { return "" }

// TamilHeuristic guesses சார்/மேடம் from common Tamil name endings.
// Opt-in; mis-detection is a known tradeoff.
type TamilHeuristic struct{}

var feminineEndings = []string{"i", "a", "ி", "ா", "தா", "மி", "ினி"}

func (TamilHeuristic) Honorific(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "சார்"
	}
	for _, suffix := range feminineEndings {
		if strings.HasSuffix(name, suffix) {
			return "மேடம்"
		}
	}
	return "சார்"
}
