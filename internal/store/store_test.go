package store

import "testing"

func TestVectorLiteral(t *testing.T) {
	cases := []struct {
		name string
		in   []float32
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []float32{0.5}, "[0.5]"},
		{"several", []float32{0.1, -0.25, 2}, "[0.1,-0.25,2]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := vectorLiteral(tc.in); got != tc.want {
				t.Fatalf("vectorLiteral(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
