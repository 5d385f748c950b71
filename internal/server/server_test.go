package server

import "testing"

func TestNormalizeAddr(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"3000", ":3000"},
		{":3000", ":3000"},
		{" 8080 ", ":8080"},
		{"127.0.0.1:3000", "127.0.0.1:3000"},
	}
	for _, tc := range cases {
		if got := normalizeAddr(tc.in); got != tc.want {
			t.Fatalf("normalizeAddr(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}
