package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Show - 01", "Show - 01"},
		{"Re:Zero / What?", "Re-Zero - What"},
		{`a\b|c`, "a-b-c"},
		{`Say "hi" <now>*`, "Say 'hi' now"},
		{"tab\there", "tabhere"},
		{"  ..hidden.  ", "hidden"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
