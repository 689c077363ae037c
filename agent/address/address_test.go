package address

import "testing"

func TestNeutralNeverGuesses(t *testing.T) {
	t.Parallel()

	var s Style = Neutral{}
	for _, name := range []string{"Kumar", "லட்சுமி", ""} {
		if got := s.Honorific(name); got != "" {
			t.Fatalf("Neutral.Honorific(%q) = %q, want empty", name, got)
		}
	}
}

func TestTamilHeuristic(t *testing.T) {
	t.Parallel()

	var s Style = TamilHeuristic{}
	cases := []struct {
		name string
		want string
	}{
		{"Kumar", "சார்"},
		{"Lakshmi", "மேடம்"},
		{"Priya", "மேடம்"},
		{"", "சார்"},
	}
	for _, tc := range cases {
		if got := s.Honorific(tc.name); got != tc.want {
			t.Fatalf("Honorific(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
