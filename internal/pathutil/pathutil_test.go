package pathutil

import (
	"os"
	"testing"
)

func TestCanonicalizeFrom(t *testing.T) {
	cwd := "/home/user/work"

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty means cwd", "", "/home/user/work"},
		{"absolute unchanged", "/srv/projects", "/srv/projects"},
		{"relative joins cwd", "api", "/home/user/work/api"},
		{"dot-slash relative", "./api", "/home/user/work/api"},
		{"single dot", ".", "/home/user/work"},
		{"parent traversal", "../other", "/home/user/other"},
		{"interior dots collapse", "/srv/./a/../b", "/srv/b"},
		{"trailing slash dropped", "/srv/projects/", "/srv/projects"},
		{"double separators collapse", "/srv//projects", "/srv/projects"},
		{"dotdot does not escape root", "/../..", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalizeFrom(tt.input, cwd)
			if got != tt.want {
				t.Errorf("CanonicalizeFrom(%q, %q) = %q, want %q", tt.input, cwd, got, tt.want)
			}
		})
	}
}

// Equivalent spellings of the same directory must canonicalize identically,
// so a plan filed under one spelling is found via any other.
func TestCanonicalizeFromEquivalentForms(t *testing.T) {
	cwd := "/home/user/work"
	forms := []string{"api", "./api", "api/", "./api/.", "sub/../api"}

	want := CanonicalizeFrom("api", cwd)
	for _, form := range forms {
		if got := CanonicalizeFrom(form, cwd); got != want {
			t.Errorf("CanonicalizeFrom(%q) = %q, want %q", form, got, want)
		}
	}
}

func TestCanonicalizeFromIdempotent(t *testing.T) {
	cwd := "/home/user/work"
	inputs := []string{"", ".", "api", "./a/../b", "/srv//x/./y", "../.."}

	for _, input := range inputs {
		once := CanonicalizeFrom(input, cwd)
		twice := CanonicalizeFrom(once, cwd)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestCanonicalizeUsesWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	got, err := Canonicalize("")
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got != CanonicalizeFrom("", cwd) {
		t.Errorf("Canonicalize(\"\") = %q, want cwd %q", got, cwd)
	}
}
