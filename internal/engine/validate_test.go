package engine

import (
	"errors"
	"testing"
)

func TestParseBitrate(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"5000", 5000, false},
		{"5,000", 5000, false},
		{"1,000,000", 1000000, false},
		{" 250 ", 250, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"5.5", 0, true},
		{",", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBitrate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBitrate(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, errValidation) {
					t.Errorf("ParseBitrate(%q) error = %v, want validation class", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBitrate(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBitrate(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFailureClassStrings(t *testing.T) {
	if got := FailureFormatUnsupported.String(); got != "format-unsupported" {
		t.Errorf("String() = %q", got)
	}
	if got := FailureCancelled.String(); got != "cancelled" {
		t.Errorf("String() = %q", got)
	}
}

func TestFallbackDecisionTable(t *testing.T) {
	allowed := map[FailureClass]bool{
		FailureSourceUnreadable:  false,
		FailureFormatUnsupported: true,
		FailureValidation:        false,
		FailureCancelled:         false,
		FailureToolUnavailable:   false,
		FailureExecution:         false,
	}
	for class, want := range allowed {
		if got := fallbackAllowed(class); got != want {
			t.Errorf("fallbackAllowed(%s) = %v, want %v", class, got, want)
		}
	}
}
