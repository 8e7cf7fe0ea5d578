package errors

import (
	"testing"
)

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Year", false},
		{"with spaces and quote", "Refugees under UNHCR's mandate", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "Year\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateYear(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"all", false},
		{"ALL", false},
		{"2013", false},
		{"13", true},
		{"20x3", true},
		{"2013-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateYear(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateYear(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidYear) {
				t.Errorf("ValidateYear(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateYearRange(t *testing.T) {
	if err := ValidateYearRange("2014", "2024"); err != nil {
		t.Errorf("valid range: %v", err)
	}
	if err := ValidateYearRange("", "2024"); err != nil {
		t.Errorf("open lower bound: %v", err)
	}
	if err := ValidateYearRange("2024", "2014"); err == nil {
		t.Error("inverted range should fail")
	}
	if err := ValidateYearRange("abcd", ""); err == nil {
		t.Error("invalid bound should fail")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "out/map.svg", false},
		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"null byte", "a\x00b", true},
		{"too long", string(make([]byte, 600)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://unpkg.com/world-atlas@2/countries-50m.json"); err != nil {
		t.Errorf("https url: %v", err)
	}
	if err := ValidateURL("ftp://example.com/data.csv"); err == nil {
		t.Error("ftp should be rejected")
	}
	if err := ValidateURL(""); err == nil {
		t.Error("empty should be rejected")
	}
}
