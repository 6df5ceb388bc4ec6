package service

import "testing"

func TestCanonicalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  alice@example.com ", "alice@example.com"},
		{"a.l.i.c.e+signup@gmail.com", "alice@gmail.com"},
		{"a.lice@googlemail.com", "alice@googlemail.com"},
		{"a.lice+tag@example.com", "a.lice+tag@example.com"},
		{"not-an-address", "not-an-address"},
	}

	for _, tc := range cases {
		if got := CanonicalizeEmail(tc.in); got != tc.want {
			t.Fatalf("CanonicalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
