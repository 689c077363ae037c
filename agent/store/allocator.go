package store

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

// localPrefix tags reference numbers allocated without the sequence
// source. Records behind them may not exist in durable storage.
const localPrefix = "RC"

// Allocator produces human-presentable complaint reference numbers.
// The normal path is <PREFIX>-<YEAR>-<SEQ:04d> from the atomic sequence
// source; when that source or the tenant is unavailable it degrades to
// a locally unique RC number so the caller still receives one.
type Allocator struct {
	seq   contractx.SequenceSource
	now   func() time.Time
	local atomic.Uint64
}

func NewAllocator(seq contractx.SequenceSource) *Allocator {
	return &Allocator{
		seq: seq,
		now: time.Now,
	}
}

// Allocate returns the next reference number for the tenant, and
// whether the local fallback fired.
func (a *Allocator) Allocate(ctx context.Context, tenant *contractx.Tenant) (string, bool) {
	now := a.now().UTC()
	if tenant == nil {
		return a.Local(now), true
	}

	n, err := a.seq.NextSequence(ctx, tenant.ID, now.Year())
	if err != nil {
		// Availability over consistency: the caller still gets a number,
		// but the record behind it may never reach durable storage.
		log.Error().Err(err).
			Str("tenant_id", tenant.ID).
			Msg("sequence source unavailable, falling back to local reference")
		return a.Local(now), true
	}

	return fmt.Sprintf("%s-%d-%04d", Prefix(tenant.Constituency), now.Year(), n), false
}

// Local derives a unique un-synced reference from a high-resolution
// timestamp plus a process-local counter.
func (a *Allocator) Local(now time.Time) string {
	return fmt.Sprintf("%s%s%04d", localPrefix, now.Format("20060102150405"), a.local.Add(1)%10000)
}

// IsLocal reports whether a reference came from the fallback path.
func IsLocal(reference string) bool {
	return strings.HasPrefix(reference, localPrefix) && !strings.Contains(reference, "-")
}

// Prefix derives the three-letter constituency code used in reference
// numbers, e.g. "Rasipuram" -> "RAS".
func Prefix(constituency string) string {
	var letters []rune
	for _, r := range constituency {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				return string(letters)
			}
		}
	}
	if len(letters) == 0 {
		return "UNK"
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
