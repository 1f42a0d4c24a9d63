package artifacts

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,000
第一句字幕

2
00:00:03,500 --> 00:00:06,000
第二句字幕
跨行继续

3
00:00:06,500 --> 00:00:08,000
final line
`

func TestExtractTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}

	got, err := ExtractTranscript(path)
	if err != nil {
		t.Fatalf("ExtractTranscript failed: %v", err)
	}
	want := "第一句字幕 第二句字幕 跨行继续 final line"
	if got != want {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestExtractTranscriptEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.srt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	got, err := ExtractTranscript(path)
	if err != nil {
		t.Fatalf("ExtractTranscript failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestHarvest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trans.srt"), []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "output_sub.mp4"), []byte("fake"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	set, err := Harvest(dir)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}
	if set.MediaPath != filepath.Join(dir, "output_sub.mp4") {
		t.Fatalf("unexpected media path: %s", set.MediaPath)
	}
	if set.Transcript == "" {
		t.Fatal("expected transcript content")
	}
}

func TestHarvestMissingMedia(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trans.srt"), []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	if _, err := Harvest(dir); err == nil {
		t.Fatal("expected error for missing media file")
	}
}
