package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"repost/internal/logging"
)

// captureDiagnostics saves a screenshot and the page text for a failed phase.
// Capture problems are logged, never returned: the original failure matters
// more than the evidence.
func (s *session) captureDiagnostics(ctx context.Context, dir string, failed phase) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("diagnostics dir unavailable", logging.Error(err))
		return
	}
	stamp := time.Now().Format("20060102-150405")
	base := filepath.Join(dir, fmt.Sprintf("publish-%s-%s", stamp, failed))

	captureCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var shot []byte
	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&shot)); err != nil {
		s.logger.Warn("screenshot capture failed", logging.Error(err))
	} else if err := os.WriteFile(base+".png", shot, 0o644); err != nil {
		s.logger.Warn("screenshot write failed", logging.Error(err))
	}

	if text, err := s.pageText(captureCtx); err != nil {
		s.logger.Warn("page text capture failed", logging.Error(err))
	} else if err := os.WriteFile(base+".txt", []byte(text), 0o644); err != nil {
		s.logger.Warn("page text write failed", logging.Error(err))
	} else {
		s.logger.Info("diagnostics captured", logging.String("path", base+".txt"))
	}
}
