package util

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Acme Corp!", want: "Acme_Corp_"},
		{in: "x.pdf", want: "x.pdf"},
		{in: "../../etc/passwd", want: ".._.._etc_passwd"},
		{in: "Société Générale", want: "Soci_t__G_n_rale"},
		{in: "a\"b;c.pdf", want: "a_b_c.pdf"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameIdempotentAndSafe(t *testing.T) {
	inputs := []string{"Acme Corp!", "日本語 Co.", "tab\there", "new\nline", "%2e%2e/", "ok_name-1.pdf", "ÿ\x00\x7f"}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		if twice := SanitizeFilename(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
		for _, r := range once {
			if !isSafeRune(r) {
				t.Fatalf("unsafe rune %q left in %q", r, once)
			}
		}
	}
}

func TestIsSafeFilename(t *testing.T) {
	cases := map[string]bool{
		"Tailored_Resume_Acme.pdf": true,
		"":                         false,
		".":                        false,
		"..":                       false,
		"a/b.pdf":                  false,
		"with space.pdf":           false,
		"..hidden":                 true,
		strings.Repeat("a", 255):   true,
		strings.Repeat("a", 256):   false,
	}
	for in, want := range cases {
		if got := IsSafeFilename(in); got != want {
			t.Fatalf("IsSafeFilename(%q) = %v, want %v", in, got, want)
		}
	}
}
