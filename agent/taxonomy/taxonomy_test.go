package taxonomy

import "testing"

func TestResolveKnownAliases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		phrase string
		want   Category
	}{
		{"road", CategoryRoad},
		{"pothole", CategoryRoad},
		{"சாலை", CategoryRoad},
		{"Water", CategoryWater},
		{"தண்ணீர்", CategoryWater},
		{"POWER", CategoryElectricity},
		{"மின்சாரம்", CategoryElectricity},
		{"sewage", CategoryDrainage},
		{"வடிகால்", CategoryDrainage},
		{"குப்பை", CategoryGarbage},
		{"சுகாதாரம்", CategoryGarbage},
		{"street light", CategoryStreetlight},
		{"தெரு விளக்கு", CategoryStreetlight},
		{"  garbage  ", CategoryGarbage},
	}

	for _, tc := range cases {
		got, ok := Resolve(tc.phrase)
		if !ok {
			t.Fatalf("Resolve(%q) not recognized", tc.phrase)
		}
		if got != tc.want {
			t.Fatalf("Resolve(%q) = %s, want %s", tc.phrase, got, tc.want)
		}
	}
}

func TestResolveRejectsUnknownPhrase(t *testing.T) {
	t.Parallel()

	if _, ok := Resolve("noise complaint"); ok {
		t.Fatal("expected noise complaint to be outside the taxonomy")
	}
	if _, ok := Resolve(""); ok {
		t.Fatal("expected empty phrase to be outside the taxonomy")
	}
}

func TestNormalizeIsTotalAndIdempotent(t *testing.T) {
	t.Parallel()

	if got := Normalize("noise complaint"); got != CategoryOther {
		t.Fatalf("Normalize(noise complaint) = %s, want other", got)
	}
	if got := Normalize(""); got != CategoryOther {
		t.Fatalf("Normalize(empty) = %s, want other", got)
	}

	// Canonical names are their own aliases, so a second pass is a no-op.
	for _, cat := range Categories() {
		if got := Normalize(string(cat)); got != cat {
			t.Fatalf("Normalize(%s) = %s, want fixed point", cat, got)
		}
	}
}
