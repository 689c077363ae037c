package identity

import (
	"testing"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

func TestResolvePhoneFromSIPParticipant(t *testing.T) {
	t.Parallel()

	call := contractx.CallInfo{
		RoomName: "call-room-1",
		Participants: []contractx.Participant{
			{Identity: "agent-bot", Kind: "agent"},
			{Identity: "sip_+919876543210", Kind: contractx.ParticipantKindSIP},
		},
	}

	if got := ResolvePhone(call); got != "+919876543210" {
		t.Fatalf("ResolvePhone() = %q, want +919876543210", got)
	}
}

func TestResolvePhoneFromRoomName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		room string
		want string
	}{
		{"call-_+916369675744_h7k2", "+916369675744"},
		{"call-_9876543210_a1b2", "9876543210"},
	}

	for _, tc := range cases {
		call := contractx.CallInfo{RoomName: tc.room}
		if got := ResolvePhone(call); got != tc.want {
			t.Fatalf("ResolvePhone(room=%q) = %q, want %q", tc.room, got, tc.want)
		}
	}
}

func TestResolvePhoneUnknown(t *testing.T) {
	t.Parallel()

	call := contractx.CallInfo{
		RoomName: "web-session-abc",
		Participants: []contractx.Participant{
			{Identity: "sip_", Kind: contractx.ParticipantKindSIP},
		},
	}

	if got := ResolvePhone(call); got != Unknown {
		t.Fatalf("ResolvePhone() = %q, want %q", got, Unknown)
	}
}

func TestResolvePhoneIsDeterministic(t *testing.T) {
	t.Parallel()

	call := contractx.CallInfo{RoomName: "call-_+916369675744_h7k2"}
	first := ResolvePhone(call)
	for i := 0; i < 5; i++ {
		if got := ResolvePhone(call); got != first {
			t.Fatalf("ResolvePhone() changed between calls: %q then %q", first, got)
		}
	}
}
