package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"repost/internal/logging"
)

// strategy is one way of locating or activating a page control.
type strategy struct {
	name string
	run  func(ctx context.Context) error
}

// cascade tries strategies in order until one succeeds. Each strategy gets a
// bounded slice of time and the cascade as a whole has an overall budget.
type cascade struct {
	name        string
	perStrategy time.Duration
	budget      time.Duration
}

var errCascadeExhausted = errors.New("all strategies failed")

// run returns the name of the first strategy that succeeded.
func (c cascade) run(ctx context.Context, logger *slog.Logger, strategies []strategy) (string, error) {
	if len(strategies) == 0 {
		return "", fmt.Errorf("%s: no strategies", c.name)
	}
	perStrategy := c.perStrategy
	if perStrategy <= 0 {
		perStrategy = 5 * time.Second
	}

	deadline := time.Time{}
	if c.budget > 0 {
		deadline = time.Now().Add(c.budget)
	}

	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}

		slice := perStrategy
		if !deadline.IsZero() {
			if remaining := time.Until(deadline); remaining < slice {
				slice = remaining
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, slice)
		err := s.run(attemptCtx)
		cancel()
		if err == nil {
			logger.Debug("cascade strategy succeeded",
				logging.String("cascade", c.name),
				logging.String("strategy", s.name),
			)
			return s.name, nil
		}
		logger.Debug("cascade strategy failed",
			logging.String("cascade", c.name),
			logging.String("strategy", s.name),
			logging.Error(err),
		)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errCascadeExhausted
	}
	return "", fmt.Errorf("%s: %w", c.name, lastErr)
}
