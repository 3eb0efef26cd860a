package guard

import (
	"time"

	"github.com/0xfern/chatsnipe/internal/model"
)

// DefaultMaxAge is how old a record may be and still trigger an execution.
const DefaultMaxAge = 20 * time.Second

// Recency rejects records whose observation timestamp is older than MaxAge
// at check time. A record dequeued after sitting behind a long execution is
// the usual casualty.
type Recency struct {
	maxAge time.Duration
}

// NewRecency returns a recency check with the given maximum age. A
// non-positive maxAge falls back to DefaultMaxAge.
func NewRecency(maxAge time.Duration) Recency {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return Recency{maxAge: maxAge}
}

// MaxAge returns the configured maximum record age.
func (g Recency) MaxAge() time.Duration {
	return g.maxAge
}

// IsRecent reports whether rec is recent enough to act on at now. The zero
// record is never recent.
func (g Recency) IsRecent(rec model.AddressRecord, now time.Time) bool {
	if rec.IsZero() {
		return false
	}
	return now.Sub(rec.Timestamp) <= g.maxAge
}
