package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

// TestParseValid verifies well-formed two and three component versions parse
// to the expected value and render back to a canonical string.
func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Bare
	}{
		{"two components", "1.54", NewTwoComponent(1, 54)},
		{"three components", "1.54.0", NewThreeComponent(1, 54, 0)},
		{"three components nonzero patch", "1.54.10", NewThreeComponent(1, 54, 10)},
		{"two component zeros", "0.0", NewTwoComponent(0, 0)},
		{"three component zeros", "0.0.0", NewThreeComponent(0, 0, 0)},
		{"max uint64 major", "18446744073709551615.0", NewTwoComponent(18446744073709551615, 0)},
		{"max uint64 minor", "0.18446744073709551615", NewTwoComponent(0, 18446744073709551615)},
		{"max uint64 patch", "0.0.18446744073709551615", NewThreeComponent(0, 0, 18446744073709551615)},
		{"pre-release stripped", "1.56.0-nightly", NewThreeComponent(1, 56, 0)},
		{"pre-release with build metadata stripped", "0.0.0-anything+build", NewThreeComponent(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseRoundTrip verifies String() renders what Parse accepted.
func TestParseRoundTrip(t *testing.T) {
	for _, input := range []string{"1.21", "1.21.0", "1.21.13", "0.0", "0.0.0"} {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}
		if got.String() != input {
			t.Errorf("Parse(%q).String() = %q", input, got.String())
		}
	}
}

// TestParseInvalid verifies every malformed form is rejected.
func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"one component", "1"},
		{"one component dot", "1."},
		{"space separated", "1 36 0"},
		{"comma separated", "1,36,0"},
		{"two components trailing dot", "1.1."},
		{"three components trailing dot", "1.1.1."},
		{"four components", "1.1.0.0"},
		{"major not a number", "x.0.0"},
		{"minor not a number", "1.x"},
		{"patch not a number", "1.36.x"},
		{"two components with pre-release", "1.1-nightly"},
		{"major overflow", "18446744073709551616.0"},
		{"minor overflow", "0.18446744073709551616"},
		{"patch overflow", "0.0.18446744073709551616"},
		{"negative major", "-1.0.0"},
		{"negative minor", "0.-1.0"},
		{"negative patch", "0.0.-1"},
		{"build metadata without pre-release", "0.0.0+some"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Bare
		want int
	}{
		{NewTwoComponent(1, 21), NewTwoComponent(1, 21), 0},
		{NewTwoComponent(1, 21), NewTwoComponent(1, 22), -1},
		{NewTwoComponent(2, 0), NewTwoComponent(1, 99), 1},
		{NewThreeComponent(1, 21, 3), NewThreeComponent(1, 21, 4), -1},
		{NewTwoComponent(1, 21), NewThreeComponent(1, 21, 0), 0},
		{NewThreeComponent(1, 21, 1), NewTwoComponent(1, 21), 1},
	}

	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareVersion(t *testing.T) {
	v := semver.MustParse("1.54.1")

	if got := NewTwoComponent(1, 54).CompareVersion(v); got >= 0 {
		t.Errorf("1.54 vs 1.54.1 = %d, want negative (patch pads to zero)", got)
	}
	if got := NewThreeComponent(1, 54, 1).CompareVersion(v); got != 0 {
		t.Errorf("1.54.1 vs 1.54.1 = %d, want 0", got)
	}
	if got := NewTwoComponent(1, 55).CompareVersion(v); got <= 0 {
		t.Errorf("1.55 vs 1.54.1 = %d, want positive", got)
	}
}

// TestConstraintTilde verifies the tilde semantics used by the matcher.
func TestConstraintTilde(t *testing.T) {
	tests := []struct {
		bare    Bare
		version string
		want    bool
	}{
		{NewTwoComponent(1, 54), "1.54.0", true},
		{NewTwoComponent(1, 54), "1.54.2", true},
		{NewTwoComponent(1, 54), "1.55.0", false},
		{NewThreeComponent(1, 54, 1), "1.54.1", true},
		{NewThreeComponent(1, 54, 1), "1.54.2", true},
		{NewThreeComponent(1, 54, 1), "1.54.0", false},
		{NewThreeComponent(1, 54, 1), "1.55.0", false},
	}

	for _, tt := range tests {
		c := tt.bare.Constraint()
		if got := c.Check(semver.MustParse(tt.version)); got != tt.want {
			t.Errorf("~%v matches %s = %v, want %v", tt.bare, tt.version, got, tt.want)
		}
	}
}
