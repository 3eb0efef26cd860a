package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidAddress indicates input that does not normalize to a contract address.
var ErrInvalidAddress = errors.New("invalid contract address")

// -----------------------------------------------------------------------------
// Observations
// -----------------------------------------------------------------------------

// AddressRecord is a single address observation.
type AddressRecord struct {
	Timestamp time.Time // Observation instant (UTC)
	Address   string    // Canonical contract address ("0x" + 40 lowercase hex)
}

// NewAddressRecord builds a record from raw address text and an observation
// time. The address is normalized; invalid input returns ErrInvalidAddress
// and no record is constructed.
func NewAddressRecord(address string, ts time.Time) (AddressRecord, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return AddressRecord{}, err
	}
	return AddressRecord{Timestamp: ts.UTC(), Address: addr}, nil
}

// IsZero reports whether the record is the zero value.
func (r AddressRecord) IsZero() bool {
	return r.Address == "" && r.Timestamp.IsZero()
}

// Equal reports whether two records carry the same address and instant.
func (r AddressRecord) Equal(o AddressRecord) bool {
	return r.Address == o.Address && r.Timestamp.Equal(o.Timestamp)
}

// NormalizeAddress canonicalizes raw address text captured from a chat
// surface: NFKC fold (full-width forms appear in pasted chat text), strip
// whitespace, lowercase, then require "0x" + 40 hex characters.
func NormalizeAddress(raw string) (string, error) {
	s := norm.NFKC.String(raw)
	s = strings.Join(strings.Fields(s), "")
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return s, nil
}

// -----------------------------------------------------------------------------
// Executions
// -----------------------------------------------------------------------------

// Execution records one full buy attempt sequence for an address.
type Execution struct {
	ID         uuid.UUID       // Primary key
	Address    string          // Canonical contract address
	ObservedAt time.Time       // Observation instant of the triggering record
	StartedAt  time.Time       // First attempt start
	FinishedAt time.Time       // Last attempt end
	Attempts   int             // Attempts actually made (1..N)
	Succeeded  bool            // true if any attempt succeeded
	Error      string          // Terminal error text, empty on success
	BuyAmount  decimal.Decimal // Configured order size
}
