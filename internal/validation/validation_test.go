package validation

import (
	"errors"
	"testing"
)

func TestValidateStationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"default station", "s0000635", "s0000635", nil},
		{"trimmed", "  s0000430 ", "s0000430", nil},
		{"underscore and hyphen", "test_station-1", "test_station-1", nil},
		{"empty", "", "", ErrStationEmpty},
		{"whitespace only", "   ", "", ErrStationEmpty},
		{"slash", "s000/635", "", ErrStationInvalidChars},
		{"dot", "../etc", "", ErrStationInvalidChars},
		{"non-ascii", "sé00635", "", ErrStationInvalidChars},
		{"too long", "s000000000000000000000000000000000", "", ErrStationTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateStationID(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateStationID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateStationID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateStationID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateProvince(t *testing.T) {
	for _, p := range Provinces {
		got, err := ValidateProvince(p)
		if err != nil || got != p {
			t.Errorf("ValidateProvince(%q) = %q, %v", p, got, err)
		}
	}
	if got, err := ValidateProvince(" qc "); err != nil || got != "QC" {
		t.Errorf("ValidateProvince(qc) = %q, %v; want QC", got, err)
	}
	if got, err := ValidateProvince("hef"); err != nil || got != "HEF" {
		t.Errorf("ValidateProvince(hef) = %q, %v; want HEF", got, err)
	}
	for _, bad := range []string{"", "XX", "quebec"} {
		if _, err := ValidateProvince(bad); !errors.Is(err, ErrUnknownProvince) {
			t.Errorf("ValidateProvince(%q) error = %v, want ErrUnknownProvince", bad, err)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"english", "e", false},
		{"French", "f", false},
		{" ENGLISH ", "e", false},
		{"e", "", true},
		{"spanish", "", true},
	}
	for _, tt := range tests {
		got, err := LanguageCode(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownLanguage) {
				t.Errorf("LanguageCode(%q) error = %v, want ErrUnknownLanguage", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("LanguageCode(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
