package cli

import (
	"reflect"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"single", "docs/a.md", []string{"docs/a.md"}},
		{"multiple", "a.md,b.md", []string{"a.md", "b.md"}},
		{"trims spaces", " a.md , b.md ", []string{"a.md", "b.md"}},
		{"drops empty entries", "a.md,,b.md,", []string{"a.md", "b.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitCSV(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitCSV(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureTrailingNewline(t *testing.T) {
	if got := ensureTrailingNewline("text"); got != "text\n" {
		t.Errorf("got %q", got)
	}
	if got := ensureTrailingNewline("text\n"); got != "text\n" {
		t.Errorf("got %q", got)
	}
	if got := ensureTrailingNewline(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42", "plan id")
	if err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}

	if _, err := parseID("abc", "plan id"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
