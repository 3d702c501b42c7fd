package validator

import (
	"errors"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
	}
	for _, tc := range cases {
		got, err := NormalizeEmail(tc.in)
		if err != nil {
			t.Errorf("NormalizeEmail(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEmail_Invalid(t *testing.T) {
	for _, in := range []string{"", "not-an-email", "a@b@c", "Bob <bob@example.com>"} {
		if _, err := NormalizeEmail(in); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("NormalizeEmail(%q): expected ErrInvalidEmail, got %v", in, err)
		}
	}
}
