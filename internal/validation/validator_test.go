package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_AcceptsNaturalLanguage(t *testing.T) {
	tests := []string{
		"turn on the living room lights",
		"Set temperature to 72 degrees",
		"  lock the front door  ",
		"play some jazz on spotify",
		"what's the weather like?",
	}

	for _, input := range tests {
		v, err := Validate(input)
		if err != nil {
			t.Errorf("Validate(%q) error = %v, want nil", input, err)
			continue
		}
		if v.Normalised != strings.ToLower(strings.TrimSpace(input)) {
			t.Errorf("Validate(%q) Normalised = %q", input, v.Normalised)
		}
		if v.Original != input {
			t.Errorf("Validate(%q) Original = %q, want input unchanged", input, v.Original)
		}
	}
}

func TestValidate_RejectsEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := Validate(input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Validate(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestValidate_RejectsTooLong(t *testing.T) {
	input := strings.Repeat("a", MaxCommandLength+1)

	_, err := Validate(input)
	if !errors.Is(err, ErrInputTooLong) {
		t.Errorf("Validate(long) error = %v, want ErrInputTooLong", err)
	}

	// Exactly at the limit is fine.
	if _, err := Validate(strings.Repeat("a", MaxCommandLength)); err != nil {
		t.Errorf("Validate(at limit) error = %v, want nil", err)
	}
}

func TestValidate_RejectsMaliciousPatterns(t *testing.T) {
	tests := []string{
		"eval(something)",
		"turn on lights; rm -rf /",
		"DROP TABLE sessions",
		"delete from audit_logs",
		"insert into sessions",
		"lights && reboot",
		"../../etc/passwd",
		"<script>alert(1)</script>",
		"javascript:void(0)",
		"turn on `whoami`",
		"$(cat /etc/shadow)",
		"import os please",
		"subprocess run",
	}

	for _, input := range tests {
		_, err := Validate(input)
		if !errors.Is(err, ErrMaliciousPattern) {
			t.Errorf("Validate(%q) error = %v, want ErrMaliciousPattern", input, err)
		}
	}
}

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	_, err := Validate(string([]byte{0xff, 0xfe, 0x61}))
	if !errors.Is(err, ErrMaliciousPattern) {
		t.Errorf("Validate(invalid utf8) error = %v, want ErrMaliciousPattern", err)
	}
}
