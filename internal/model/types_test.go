package model

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "already canonical",
			raw:  "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
			want: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		},
		{
			name: "mixed case",
			raw:  "0xDE0B295669a9FD93d5F28D9Ec85E40f4cb697BAe",
			want: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		},
		{
			name: "surrounding whitespace",
			raw:  "  0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae\n",
			want: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		},
		{
			name: "interior whitespace from chat wrapping",
			raw:  "0xde0b295669a9fd93d5f28d9ec85e40f4 cb697bae",
			want: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		},
		{
			name: "full-width characters fold to ascii",
			raw:  "０ｘde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
			want: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		},
		{
			name:    "missing prefix",
			raw:     "de0b295669a9fd93d5f28d9ec85e40f4cb697bae",
			wantErr: true,
		},
		{
			name:    "too short",
			raw:     "0xde0b295669a9fd93d5f28d9ec85e40f4cb697ba",
			wantErr: true,
		},
		{
			name:    "too long",
			raw:     "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae1",
			wantErr: true,
		},
		{
			name:    "non-hex characters",
			raw:     "0xzz0b295669a9fd93d5f28d9ec85e40f4cb697bae",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeAddress(%q) = %q, want error", tt.raw, got)
				}
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("error = %v, want ErrInvalidAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeAddress(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewAddressRecord(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.FixedZone("CST", 8*3600))

	rec, err := NewAddressRecord("0xDE0B295669a9FD93d5F28D9Ec85E40f4cb697BAe", ts)
	if err != nil {
		t.Fatalf("NewAddressRecord error: %v", err)
	}
	if rec.Address != "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae" {
		t.Errorf("Address = %q, want lowercase canonical form", rec.Address)
	}
	if rec.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", rec.Timestamp.Location())
	}
	if !rec.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want same instant as %v", rec.Timestamp, ts)
	}

	if _, err := NewAddressRecord("not-an-address", ts); err == nil {
		t.Error("NewAddressRecord with invalid input: want error, got nil")
	}
}

func TestAddressRecordEqual(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := AddressRecord{Timestamp: ts, Address: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"}

	if !a.Equal(AddressRecord{Timestamp: ts.In(time.FixedZone("X", 3600)), Address: a.Address}) {
		t.Error("Equal() = false for same instant in different zone, want true")
	}
	if a.Equal(AddressRecord{Timestamp: ts.Add(time.Nanosecond), Address: a.Address}) {
		t.Error("Equal() = true for different timestamps, want false")
	}
	if a.Equal(AddressRecord{Timestamp: ts, Address: "0x1111111111111111111111111111111111111111"}) {
		t.Error("Equal() = true for different addresses, want false")
	}
}

func TestAddressRecordIsZero(t *testing.T) {
	if !(AddressRecord{}).IsZero() {
		t.Error("IsZero() = false for zero record, want true")
	}
	rec := AddressRecord{Timestamp: time.Now(), Address: "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"}
	if rec.IsZero() {
		t.Error("IsZero() = true for populated record, want false")
	}
}
