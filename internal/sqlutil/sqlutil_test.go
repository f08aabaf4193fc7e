package sqlutil

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"under_score", `under\_score`},
		{`back\slash`, `back\\slash`},
		{"/srv/app_v2", `/srv/app\_v2`},
	}
	for _, tt := range tests {
		if got := EscapeLike(tt.input); got != tt.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
