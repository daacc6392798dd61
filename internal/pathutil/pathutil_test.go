package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"HomeShorthand", "~/downloads", filepath.Join(home, "downloads")},
		{"HomeNested", "~/a/b/c.txt", filepath.Join(home, "a/b/c.txt")},
		{"AbsoluteUntouched", "/var/data", "/var/data"},
		{"RelativeUntouched", "data/in", "data/in"},
		{"BareTildeUntouched", "~", "~"},
		{"TildeUserUntouched", "~bob/data", "~bob/data"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0 TB"},
	}

	for _, tt := range tests {
		if got := HumanReadableSize(tt.bytes); got != tt.want {
			t.Errorf("HumanReadableSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
