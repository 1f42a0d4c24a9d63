package publisher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"repost/internal/logging"
)

// phase names the stations of the publish state machine. Progress is strictly
// forward; any phase may fail into the terminal failure state.
type phase string

const (
	phaseSessionStart phase = "session_start"
	phaseLoginCheck   phase = "login_check"
	phaseTabSelect    phase = "tab_select"
	phaseMediaUpload  phase = "media_upload"
	phaseFieldFill    phase = "field_fill"
	phaseSubmit       phase = "submit"
)

const (
	loginPollInterval = 10 * time.Second
	titleFieldSel     = `input[placeholder*="填写标题"]`
	descriptionSel    = `div[contenteditable="true"], textarea[placeholder*="描述"]`
	photoTabText      = "上传图文"
	videoTabText      = "上传视频"
	successMarker     = "发布成功"
)

var loginMarkers = []string{"手机号", "密码", "登录"}

// phaseError ties a failure to the phase it happened in.
type phaseError struct {
	phase phase
	err   error
}

func (e *phaseError) Error() string { return fmt.Sprintf("%s: %v", e.phase, e.err) }
func (e *phaseError) Unwrap() error { return e.err }

func failPhase(p phase, err error) error {
	return &phaseError{phase: p, err: err}
}

// pageText returns the visible text of the current document.
func (s *session) pageText(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text))
	return text, err
}

func (s *session) pageContainsAny(ctx context.Context, needles []string) (bool, error) {
	text, err := s.pageText(ctx)
	if err != nil {
		return false, err
	}
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true, nil
		}
	}
	return false, nil
}

// openPublishSurface navigates to the creator publishing page.
func (s *session) openPublishSurface(ctx context.Context) error {
	if err := chromedp.Run(ctx,
		chromedp.Navigate(s.cfg.CreatorURL),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return failPhase(phaseSessionStart, err)
	}
	return nil
}

// awaitLogin detects login markers and, when present, waits for a human to
// complete the login before continuing.
func (s *session) awaitLogin(ctx context.Context) error {
	loggedOut, err := s.pageContainsAny(ctx, loginMarkers)
	if err != nil {
		return failPhase(phaseLoginCheck, err)
	}
	if loggedOut {
		wait := time.Duration(s.cfg.LoginWaitSeconds) * time.Second
		if wait <= 0 {
			wait = 5 * time.Minute
		}
		s.logger.Info("login required, waiting for manual login",
			logging.Duration("wait_budget", wait))
		deadline := time.Now().Add(wait)
		for {
			select {
			case <-ctx.Done():
				return failPhase(phaseLoginCheck, ctx.Err())
			case <-time.After(loginPollInterval):
			}
			stillOut, err := s.pageContainsAny(ctx, loginMarkers)
			if err != nil {
				return failPhase(phaseLoginCheck, err)
			}
			if !stillOut {
				s.logger.Info("manual login detected")
				break
			}
			if time.Now().After(deadline) {
				return failPhase(phaseLoginCheck, fmt.Errorf("login not completed within %s", wait))
			}
		}
	}

	// Confirm the posting surface is actually reachable.
	ready, err := s.pageContainsAny(ctx, []string{videoTabText, photoTabText})
	if err != nil {
		return failPhase(phaseLoginCheck, err)
	}
	if !ready {
		return failPhase(phaseLoginCheck, fmt.Errorf("publish surface markers not found"))
	}
	return nil
}

// selectVideoTab forces the image tab first to normalize the UI, then
// activates the video tab, verifying the active class each time.
func (s *session) selectVideoTab(ctx context.Context) error {
	if err := s.activateTab(ctx, photoTabText); err != nil {
		return failPhase(phaseTabSelect, fmt.Errorf("photo tab: %w", err))
	}
	if err := s.activateTab(ctx, videoTabText); err != nil {
		return failPhase(phaseTabSelect, fmt.Errorf("video tab: %w", err))
	}
	return nil
}

func (s *session) activateTab(ctx context.Context, label string) error {
	script := fmt.Sprintf(`(() => {
		const tabs = Array.from(document.querySelectorAll('.creator-tab, [class*="tab"]'));
		const tab = tabs.find(t => t.innerText && t.innerText.includes(%q));
		if (!tab) return "missing";
		if (tab.className.includes("active")) return "active";
		tab.click();
		return "clicked";
	})()`, label)

	for attempt := 0; attempt < 3; attempt++ {
		var state string
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &state)); err != nil {
			return err
		}
		switch state {
		case "missing":
			return fmt.Errorf("tab %q not found", label)
		case "active":
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1500 * time.Millisecond):
		}
	}
	return fmt.Errorf("tab %q never became active", label)
}

// uploadMedia hands the media file to the page and waits for the title field
// to appear, which signals the upload was accepted.
func (s *session) uploadMedia(ctx context.Context, mediaPath string) error {
	upload := cascade{name: "media upload", perStrategy: 10 * time.Second, budget: 45 * time.Second}
	strategyName, err := upload.run(ctx, s.logger, []strategy{
		{name: "file input injection", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.SetUploadFiles(`input[type="file"]`, []string{mediaPath}, chromedp.ByQuery))
		}},
		{name: "upload container input", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.SetUploadFiles(`.upload-content input[type="file"], .upload-wrapper input[type="file"]`, []string{mediaPath}, chromedp.ByQuery))
		}},
		{name: "drop zone input", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.SetUploadFiles(`.drag-over input, [class*="drop"] input`, []string{mediaPath}, chromedp.ByQuery))
		}},
		{name: "os file picker", run: func(ctx context.Context) error {
			if err := chromedp.Run(ctx, chromedp.Click(`.upload-button, [class*="upload"]`, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
				return err
			}
			return scriptFilePicker(ctx, mediaPath)
		}},
	})
	if err != nil {
		return failPhase(phaseMediaUpload, err)
	}
	s.logger.Info("media upload dispatched", logging.String("strategy", strategyName))

	timeout := time.Duration(s.cfg.UploadTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(titleFieldSel, chromedp.ByQuery)); err != nil {
		return failPhase(phaseMediaUpload, fmt.Errorf("title field not visible within %s: %w", timeout, err))
	}
	return nil
}

// scriptFilePicker drives the OS file dialog when only a click-to-browse
// control is available.
func scriptFilePicker(ctx context.Context, mediaPath string) error {
	time.Sleep(2 * time.Second)
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`tell application "System Events"
			keystroke "g" using {command down, shift down}
			delay 1
			keystroke %q
			delay 1
			keystroke return
			delay 1
			keystroke return
		end tell`, mediaPath)
		cmd = exec.CommandContext(ctx, "osascript", "-e", script)
	case "linux":
		cmd = exec.CommandContext(ctx, "xdotool", "type", "--delay", "50", mediaPath)
	default:
		return fmt.Errorf("no file picker scripting on %s", runtime.GOOS)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("file picker scripting: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	if runtime.GOOS == "linux" {
		if out, err := exec.CommandContext(ctx, "xdotool", "key", "Return").CombinedOutput(); err != nil {
			return fmt.Errorf("file picker confirm: %w (%s)", err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}

// fillFields types the generated copy with humanized pacing.
func (s *session) fillFields(ctx context.Context, title, description string) error {
	if err := chromedp.Run(ctx,
		chromedp.Click(titleFieldSel, chromedp.ByQuery, chromedp.NodeVisible),
	); err != nil {
		return failPhase(phaseFieldFill, fmt.Errorf("focus title field: %w", err))
	}
	if err := s.typeHumanized(ctx, titleFieldSel, title); err != nil {
		return failPhase(phaseFieldFill, fmt.Errorf("type title: %w", err))
	}

	if err := chromedp.Run(ctx,
		chromedp.Click(descriptionSel, chromedp.ByQuery, chromedp.NodeVisible),
	); err != nil {
		return failPhase(phaseFieldFill, fmt.Errorf("focus description field: %w", err))
	}
	if err := s.typeDescription(ctx, descriptionSel, description); err != nil {
		return failPhase(phaseFieldFill, fmt.Errorf("type description: %w", err))
	}
	return nil
}

// submit locates the publish control, pauses for review, clicks, and waits
// for the success marker. A missing marker downgrades to soft success.
func (s *session) submit(ctx context.Context) (bool, error) {
	pause := time.Duration(s.cfg.ReviewPauseSeconds) * time.Second
	if pause > 0 {
		s.logger.Info("review pause before publish", logging.Duration("pause", pause))
		select {
		case <-ctx.Done():
			return false, failPhase(phaseSubmit, ctx.Err())
		case <-time.After(pause):
		}
	}

	publish := cascade{name: "publish control", perStrategy: 5 * time.Second, budget: 30 * time.Second}
	clickByText := func(labels ...string) func(context.Context) error {
		return func(ctx context.Context) error {
			script := fmt.Sprintf(`(() => {
				const labels = %s;
				const buttons = Array.from(document.querySelectorAll('button, [role="button"], .btn'));
				const hit = buttons.find(b => {
					const t = (b.innerText || "").trim().toLowerCase();
					return labels.some(l => t === l || t.includes(l));
				});
				if (!hit) return false;
				hit.click();
				return true;
			})()`, jsStringArray(labels))
			var clicked bool
			if err := chromedp.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
				return err
			}
			if !clicked {
				return fmt.Errorf("no control matching %v", labels)
			}
			return nil
		}
	}
	strategyName, err := publish.run(ctx, s.logger, []strategy{
		{name: "publish text", run: clickByText("发布", "发表", "提交")},
		{name: "english text", run: clickByText("publish", "submit")},
		{name: "class hint", run: func(ctx context.Context) error {
			return chromedp.Run(ctx, chromedp.Click(`button[class*="publish"], button[class*="submit"]`, chromedp.ByQuery, chromedp.NodeVisible))
		}},
	})
	if err != nil {
		return false, failPhase(phaseSubmit, err)
	}
	s.logger.Info("publish control clicked", logging.String("strategy", strategyName))

	confirmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for {
		found, err := s.pageContainsAny(confirmCtx, []string{successMarker})
		if err == nil && found {
			return false, nil
		}
		select {
		case <-confirmCtx.Done():
			// Submission went out but no confirmation appeared.
			s.logger.Warn("publish submitted without confirmation marker")
			return true, nil
		case <-time.After(2 * time.Second):
		}
	}
}

func jsStringArray(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", strings.ToLower(v))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
