package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mkdir(t *testing.T, root, name string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	return path
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"My Video: Part 2!", "myvideopart2"},
		{"  Spaces  ", "spaces"},
		{"中文标题 Test", "中文标题test"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.input); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLocateExactNormalizedMatch(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "unrelated")
	want := mkdir(t, root, "My Video Part 2")

	got, err := LocateOutputDir(root, "my video: part 2!")
	if err != nil {
		t.Fatalf("LocateOutputDir failed: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocateTieBreaksLexicographically(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "Video-B")
	mkdir(t, root, "video b")

	got, err := LocateOutputDir(root, "Video B")
	if err != nil {
		t.Fatalf("LocateOutputDir failed: %v", err)
	}
	if filepath.Base(got) != "Video-B" {
		t.Fatalf("expected deterministic smallest name, got %s", got)
	}
}

func TestLocateFallsBackToMostRecent(t *testing.T) {
	root := t.TempDir()
	older := mkdir(t, root, "older")
	newer := mkdir(t, root, "newer")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	now := time.Now()
	if err := os.Chtimes(newer, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := LocateOutputDir(root, "no such title")
	if err != nil {
		t.Fatalf("LocateOutputDir failed: %v", err)
	}
	if got != newer {
		t.Fatalf("expected most recent folder, got %s", got)
	}
}

func TestLocateEmptyRoot(t *testing.T) {
	root := t.TempDir()
	got, err := LocateOutputDir(root, "anything")
	if err != nil {
		t.Fatalf("LocateOutputDir failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty result, got %s", got)
	}
}

func TestLocateIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := LocateOutputDir(root, "stray")
	if err != nil {
		t.Fatalf("LocateOutputDir failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no match among plain files, got %s", got)
	}
}
