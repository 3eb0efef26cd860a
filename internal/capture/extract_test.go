package capture

import (
	"testing"
)

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "bare address",
			text:   "0x1234567890abcdef1234567890abcdef12345678",
			want:   "0x1234567890abcdef1234567890abcdef12345678",
			wantOK: true,
		},
		{
			name:   "address inside chatter",
			text:   "ape this NOW 0x1234567890abcdef1234567890abcdef12345678 100x guaranteed",
			want:   "0x1234567890abcdef1234567890abcdef12345678",
			wantOK: true,
		},
		{
			name:   "mixed case normalized",
			text:   "ca: 0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD",
			want:   "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
			wantOK: true,
		},
		{
			name:   "first of several wins",
			text:   "0x1111111111111111111111111111111111111111 vs 0x2222222222222222222222222222222222222222",
			want:   "0x1111111111111111111111111111111111111111",
			wantOK: true,
		},
		{
			name:   "full width characters folded",
			text:   "ＣＡ ０ｘ1234567890abcdef1234567890abcdef12345678",
			want:   "0x1234567890abcdef1234567890abcdef12345678",
			wantOK: true,
		},
		{
			name:   "upper case X prefix",
			text:   "0X1234567890ABCDEF1234567890ABCDEF12345678",
			want:   "0x1234567890abcdef1234567890abcdef12345678",
			wantOK: true,
		},
		{
			name:   "punctuation boundary",
			text:   "buy (0x1234567890abcdef1234567890abcdef12345678)!",
			want:   "0x1234567890abcdef1234567890abcdef12345678",
			wantOK: true,
		},
		{
			name:   "no address",
			text:   "gm gm wen moon",
			wantOK: false,
		},
		{
			name:   "too short",
			text:   "0x1234567890abcdef",
			wantOK: false,
		},
		{
			name:   "too long is not an address",
			text:   "0x1234567890abcdef1234567890abcdef123456789",
			wantOK: false,
		},
		{
			name:   "hex without prefix",
			text:   "1234567890abcdef1234567890abcdef12345678",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAddress(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractAddress(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractAddress(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
