// Package identity extracts the caller's phone number from whatever
// hints the telephony layer exposes.
package identity

import (
	"regexp"
	"strings"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

// Unknown is the sentinel when no source yields a phone number.
const Unknown = "unknown"

const sipIdentityPrefix = "sip_"

var (
	// country code + national number embedded in the room name,
	// e.g. "call-_+916369675744_xxxx"
	intlPattern = regexp.MustCompile(`\+\d{10,15}`)
	// bare national number between underscores
	barePattern = regexp.MustCompile(`_(\d{10,15})_`)
)

// ResolvePhone is a pure function over session metadata: SIP participant
// identity first, then a phone pattern in the room name, then Unknown.
// Repeated calls on the same CallInfo yield the same result.
func ResolvePhone(call contractx.CallInfo) string {
	for _, p := range call.Participants {
		if p.Kind != contractx.ParticipantKindSIP {
			continue
		}
		identity := strings.TrimSpace(p.Identity)
		if identity == "" {
			continue
		}
		identity = strings.TrimPrefix(identity, sipIdentityPrefix)
		identity = strings.ReplaceAll(identity, "_", "")
		if identity != "" {
			return identity
		}
	}

	if m := intlPattern.FindString(call.RoomName); m != "" {
		return m
	}
	if m := barePattern.FindStringSubmatch(call.RoomName); m != nil {
		return m[1]
	}

	return Unknown
}
