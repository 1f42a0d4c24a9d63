package publisher

import (
	"context"
	"errors"
	"log/slog"

	"repost/internal/config"
	"repost/internal/logging"
)

// Request carries everything one publish attempt needs.
type Request struct {
	MediaPath   string
	Title       string
	Description string
}

// Result reports how the publish concluded. SoftSuccess means the submission
// went out but the page never confirmed it.
type Result struct {
	SoftSuccess bool
}

// Automator drives the browser through a full publish attempt.
type Automator struct {
	cfg     config.Publisher
	diagDir string
	logger  *slog.Logger
}

// NewAutomator builds the publish automation. Diagnostics land in diagDir.
func NewAutomator(cfg config.Publisher, diagDir string, logger *slog.Logger) *Automator {
	return &Automator{
		cfg:     cfg,
		diagDir: diagDir,
		logger:  logging.NewComponentLogger(logger, "publisher"),
	}
}

// Publish walks the state machine from session start to confirmation.
// Teardown always runs; failures carry the phase they happened in.
func (a *Automator) Publish(ctx context.Context, req Request) (Result, error) {
	sess, err := newSession(ctx, a.cfg, a.logger)
	if err != nil {
		return Result{}, failPhase(phaseSessionStart, err)
	}
	defer sess.teardown()

	// Browser actions run on the session context so they share the tab.
	runCtx := sess.ctx

	steps := []struct {
		phase phase
		run   func() error
	}{
		{phaseSessionStart, func() error { return sess.openPublishSurface(runCtx) }},
		{phaseLoginCheck, func() error { return sess.awaitLogin(runCtx) }},
		{phaseTabSelect, func() error { return sess.selectVideoTab(runCtx) }},
		{phaseMediaUpload, func() error { return sess.uploadMedia(runCtx, req.MediaPath) }},
		{phaseFieldFill, func() error { return sess.fillFields(runCtx, req.Title, req.Description) }},
	}
	for _, step := range steps {
		a.logger.Info("publish phase", logging.String("phase", string(step.phase)))
		if err := step.run(); err != nil {
			sess.captureDiagnostics(runCtx, a.diagDir, FailedPhase(err, step.phase))
			return Result{}, err
		}
	}

	a.logger.Info("publish phase", logging.String("phase", string(phaseSubmit)))
	soft, err := sess.submit(runCtx)
	if err != nil {
		sess.captureDiagnostics(runCtx, a.diagDir, FailedPhase(err, phaseSubmit))
		return Result{}, err
	}
	if soft {
		a.logger.Warn("publish soft success, manual verification recommended")
	} else {
		a.logger.Info("publish confirmed")
	}
	return Result{SoftSuccess: soft}, nil
}

// FailedPhase extracts the phase from a publish error, defaulting when the
// error carries none.
func FailedPhase(err error, fallback phase) phase {
	var pe *phaseError
	if errors.As(err, &pe) {
		return pe.phase
	}
	return fallback
}
