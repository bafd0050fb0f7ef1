package memory

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  Casey Rodarmor ", "casey_rodarmor"},
		{"Lightning   Network", "lightning_network"},
		{"works at", "works_at"},
		{"WORKS\tAT", "works_at"},
		{"", ""},
		{"   ", ""},
		{"already_normalized", "already_normalized"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
