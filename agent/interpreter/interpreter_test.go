package interpreter

import "testing"

func TestDecodeArguments(t *testing.T) {
	t.Parallel()

	fields, err := decodeArguments(`{"issue_type":"water","description":"no water","ward":12,"extra":null}`)
	if err != nil {
		t.Fatalf("decodeArguments() error = %v", err)
	}
	if fields["issue_type"] != "water" {
		t.Fatalf("issue_type = %q", fields["issue_type"])
	}
	if fields["ward"] != "12" {
		t.Fatalf("non-string value not stringified: %q", fields["ward"])
	}
	if _, ok := fields["extra"]; ok {
		t.Fatal("null value should be dropped")
	}
}

func TestDecodeArgumentsEmpty(t *testing.T) {
	t.Parallel()

	fields, err := decodeArguments("  ")
	if err != nil {
		t.Fatalf("decodeArguments() error = %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("expected empty fields, got %v", fields)
	}
}

func TestDecodeArgumentsMalformed(t *testing.T) {
	t.Parallel()

	if _, err := decodeArguments("{not json"); err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestSlotToolsCoverDialogueCallbacks(t *testing.T) {
	t.Parallel()

	tools := slotTools()
	if len(tools) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(tools))
	}
}
