package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/0xfern/chatsnipe/internal/model"
)

// Persisted line format: "<RFC 3339 timestamp>|<address>".
const fieldSeparator = "|"

// formatLine renders a record as one ledger line (no trailing newline).
func formatLine(rec model.AddressRecord) string {
	return rec.Timestamp.UTC().Format(time.RFC3339Nano) + fieldSeparator + rec.Address
}

// parseLine parses one ledger line. Timestamps are accepted in any RFC 3339
// form (the original ledgers carried "+00:00" offsets and microsecond
// fractions); addresses are re-normalized so legacy mixed-case entries load.
func parseLine(line string) (model.AddressRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.AddressRecord{}, fmt.Errorf("empty line")
	}

	parts := strings.Split(line, fieldSeparator)
	if len(parts) != 2 {
		return model.AddressRecord{}, fmt.Errorf("want 2 fields, got %d", len(parts))
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(parts[0]))
	if err != nil {
		return model.AddressRecord{}, fmt.Errorf("parse timestamp: %w", err)
	}

	return model.NewAddressRecord(parts[1], ts)
}
