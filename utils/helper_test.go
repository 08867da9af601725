package utils

import (
	"strings"
	"testing"
)

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("UniqueSlice = %v", got)
	}

	empty := UniqueSlice([]string{})
	if len(empty) != 0 {
		t.Fatalf("empty input: %v", empty)
	}
}

func TestIsValidClientId(t *testing.T) {
	valid := []string{
		"550e8400-e29b-41d4-a716-446655440000",
		"device1.farm:42",
		"a",
		strings.Repeat("x", 64),
	}
	for _, id := range valid {
		if !IsValidClientId(id) {
			t.Errorf("%q should be valid", id)
		}
	}

	invalid := []string{
		"",
		"has space",
		"tab\there",
		"semi;colon",
		strings.Repeat("x", 65),
		"line\nbreak",
	}
	for _, id := range invalid {
		if IsValidClientId(id) {
			t.Errorf("%q should be invalid", id)
		}
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	if got := NormalizePhoneNumber("650-253-0000", "US"); got != "+16502530000" {
		t.Fatalf("normalize to E.164: %q", got)
	}
	// Unparseable input passes through untouched.
	if got := NormalizePhoneNumber("not-a-number", "MM"); got != "not-a-number" {
		t.Fatalf("passthrough: %q", got)
	}
}

func TestGenerateUniqueFilename(t *testing.T) {
	a := GenerateUniqueFilename()
	b := GenerateUniqueFilename()
	if a == "" || a == b {
		t.Fatalf("filenames must differ: %q %q", a, b)
	}
}
