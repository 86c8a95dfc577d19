package phone

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
		ok         bool
	}{
		{"FirstWins", []string{"3512260271", "111"}, "3512260271", true},
		{"SkipsEmpty", []string{"", "3512260271"}, "3512260271", true},
		{"SkipsWhitespace", []string{"   ", "3512260271"}, "3512260271", true},
		{"TrimsWinner", []string{" 3512260271 "}, "3512260271", true},
		{"NoCandidates", nil, "", false},
		{"AllBlank", []string{"", "  ", "\t"}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.candidates...)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("Resolve(%q) = (%q, %v), want (%q, %v)", tc.candidates, got, ok, tc.want, tc.ok)
			}
		})
	}
}
