package remixapi

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a/b.usda", "a/b.usda"},
		{`C:\project\mods\mod.usda`, "C:/project/mods/mod.usda"},
		{"a//b/./c/", "a/b/c"},
		{"/abs/../x", "/abs/../x"},
		{"./", "."},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeLayerID(t *testing.T) {
	if got := EscapeLayerID(`C:\my project\a.usda`); got != "C%3A%2Fmy+project%2Fa.usda" {
		t.Errorf("EscapeLayerID = %q", got)
	}
}
