package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"repost/internal/queue"
)

const maxSlugRunes = 40

// Slug reduces a title to a filesystem-safe fragment for record filenames.
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	runes := []rune(slug)
	if len(runes) > maxSlugRunes {
		slug = strings.Trim(string(runes[:maxSlugRunes]), "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// Filename builds the timestamped record filename for an item.
func Filename(item *queue.Item, now time.Time) string {
	return fmt.Sprintf("%s-%s.txt", now.Format("20060102-150405"), Slug(item.Title))
}

// Write persists the content record for a packaged item and returns its path.
// Records are written once and never mutated afterwards.
func Write(dir string, item *queue.Item, now time.Time) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("record: records dir not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("record: create records dir: %w", err)
	}
	path := filepath.Join(dir, Filename(item, now))
	if err := os.WriteFile(path, []byte(Body(item, now)), 0o644); err != nil {
		return "", fmt.Errorf("record: write %s: %w", path, err)
	}
	return path, nil
}

// Body renders the human-readable record content.
func Body(item *queue.Item, now time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("内容记录 / Content Record")
	line("========================")
	line("")
	line("生成时间: %s", now.Format("2006-01-02 15:04:05"))
	line("视频ID:   %s", item.VideoID)
	line("原标题:   %s", item.Title)
	if item.SourceURL != "" {
		line("来源:     %s", item.SourceURL)
	}
	line("")
	line("发布标题")
	line("--------")
	line("%s", item.DraftTitle)
	line("")
	line("发布描述")
	line("--------")
	line("%s", item.DraftDescription)
	line("")
	line("置信度: %.2f", item.DraftConfidence)
	if item.DraftUncertain {
		line("注意: 置信度偏低，发布前建议人工复核文案。")
	}
	line("")
	line("素材")
	line("----")
	line("输出目录: %s", item.ArtifactDir)
	line("视频文件: %s", item.MediaFile)
	line("字幕文件: %s", item.TranscriptPath)
	line("")
	line("手动发布步骤（自动发布失败时使用）")
	line("--------------------------------")
	line("1. 打开创作平台并登录")
	line("2. 选择\"上传视频\"，上传上面的视频文件")
	line("3. 粘贴发布标题和描述")
	line("4. 确认话题标签后点击发布")
	return b.String()
}
