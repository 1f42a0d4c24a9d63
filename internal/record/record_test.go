package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"repost/internal/queue"
)

func sampleItem() *queue.Item {
	return &queue.Item{
		VideoID:          "vid-1",
		Title:            "My Video: Part 2!",
		SourceURL:        "https://www.youtube.com/watch?v=vid-1",
		DraftTitle:       "新标题",
		DraftDescription: "一段描述",
		DraftConfidence:  0.85,
		ArtifactDir:      "/output/my-video",
		MediaFile:        "/output/my-video/output_sub.mp4",
		TranscriptPath:   "/output/my-video/trans.srt",
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"My Video: Part 2!", "my-video-part-2"},
		{"中文 标题", "中文-标题"},
		{"  spaced  out  ", "spaced-out"},
		{"!!!", "untitled"},
		{"", "untitled"},
	}
	for _, tc := range cases {
		if got := Slug(tc.input); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSlugTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := Slug(long); len([]rune(got)) > 40 {
		t.Fatalf("slug not truncated: %d runes", len([]rune(got)))
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	got := Filename(sampleItem(), now)
	if got != "20240305-103000-my-video-part-2.txt" {
		t.Fatalf("unexpected filename: %s", got)
	}
}

func TestWriteRecord(t *testing.T) {
	dir := t.TempDir()
	item := sampleItem()
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

	path, err := Write(dir, item, now)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("record written outside records dir: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	body := string(raw)
	for _, want := range []string{
		"新标题",
		"一段描述",
		"My Video: Part 2!",
		"/output/my-video/output_sub.mp4",
		"手动发布步骤",
		"0.85",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("record body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "置信度偏低") {
		t.Fatal("confident draft should not carry the low-confidence note")
	}
}

func TestBodyFlagsUncertainDraft(t *testing.T) {
	item := sampleItem()
	item.DraftConfidence = 0.4
	item.DraftUncertain = true
	body := Body(item, time.Now())
	if !strings.Contains(body, "置信度偏低") {
		t.Fatalf("uncertain draft missing review note:\n%s", body)
	}
}

func TestWriteRequiresDir(t *testing.T) {
	if _, err := Write("", sampleItem(), time.Now()); err == nil {
		t.Fatal("expected error for empty records dir")
	}
}
