package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"repost/internal/config"
	"repost/internal/logging"
)

const automationUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Chromium writes this into a profile directory while it owns it.
const profileLockFile = "SingletonLock"

const maskWebdriverScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'languages', {get: () => ['zh-CN', 'zh', 'en']});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3]});
window.chrome = window.chrome || {runtime: {}};
`

// session owns one automated browser for the duration of a publish attempt.
type session struct {
	cfg    config.Publisher
	logger *slog.Logger

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc

	profileDir  string
	tempProfile bool
}

// newSession launches the browser with the automation profile and stealth
// settings applied.
func newSession(parent context.Context, cfg config.Publisher, logger *slog.Logger) (*session, error) {
	s := &session{cfg: cfg, logger: logger}

	profileDir, temp, err := resolveProfileDir(cfg.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("publisher: prepare profile: %w", err)
	}
	s.profileDir = profileDir
	s.tempProfile = temp
	if temp {
		logger.Warn("base profile locked, using fallback profile",
			logging.String("profile_dir", profileDir))
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.UserAgent(automationUserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("lang", "zh-CN"),
	)
	if path := strings.TrimSpace(cfg.ChromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	s.ctx = browserCtx
	s.cancelCtx = cancelCtx
	s.cancelAlloc = cancelAlloc

	// Masking must be registered before any navigation.
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriverScript).Do(ctx)
		return err
	})); err != nil {
		s.teardown()
		return nil, fmt.Errorf("publisher: start browser: %w", err)
	}
	return s, nil
}

// resolveProfileDir returns the automation profile directory, falling back to
// a uuid-suffixed sibling when the base profile is held by another browser.
func resolveProfileDir(base string) (string, bool, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false, fmt.Errorf("profile dir not configured")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", false, err
	}
	if _, err := os.Lstat(filepath.Join(base, profileLockFile)); err != nil {
		return base, false, nil
	}
	fallback := base + "-" + uuid.NewString()[:8]
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		return "", false, err
	}
	return fallback, true, nil
}

// teardown always runs, even after a failed publish. Errors are logged only.
func (s *session) teardown() {
	if s.cancelCtx != nil {
		s.cancelCtx()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	if s.tempProfile && s.profileDir != "" {
		if err := os.RemoveAll(s.profileDir); err != nil {
			s.logger.Warn("fallback profile purge failed",
				logging.String("profile_dir", s.profileDir),
				logging.Error(err),
			)
		}
	}
}
