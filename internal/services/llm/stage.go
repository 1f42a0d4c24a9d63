package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/stage"
)

// Drafter is the pipeline stage that turns a harvested transcript into
// publishing copy.
type Drafter struct {
	cfg    *config.Config
	client *Client
	logger *slog.Logger
}

// NewDrafter builds the drafting stage.
func NewDrafter(cfg *config.Config, logger *slog.Logger) *Drafter {
	settings := cfg.GetLLM()
	return &Drafter{
		cfg: cfg,
		client: NewClient(Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			Referer:        settings.Referer,
			Title:          settings.Title,
			TimeoutSeconds: settings.TimeoutSeconds,
		}),
		logger: logging.NewComponentLogger(logger, "draft"),
	}
}

// SetLogger swaps in a context-scoped logger for the current item.
func (d *Drafter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// SetClient overrides the LLM client (used by tests).
func (d *Drafter) SetClient(client *Client) {
	if client != nil {
		d.client = client
	}
}

func (d *Drafter) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.TranscriptPath) == "" {
		return services.Wrap(services.ErrValidation, "draft", "check transcript", "item has no transcript path", nil)
	}
	item.SetProgress("Drafting", "Generating publishing copy")
	return nil
}

func (d *Drafter) Execute(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := os.ReadFile(item.TranscriptPath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "draft", "read transcript", "", err)
	}
	transcript := strings.TrimSpace(string(raw))
	if transcript == "" {
		return services.Wrap(services.ErrValidation, "draft", "read transcript",
			fmt.Sprintf("transcript %s is empty", item.TranscriptPath), nil)
	}

	draft, err := d.client.GenerateDraft(ctx, transcript, item.Title, item.SourceURL)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "draft", "generate copy", "", err)
	}

	item.DraftTitle = draft.Title
	item.DraftDescription = draft.Description
	item.DraftConfidence = draft.Confidence
	item.DraftUncertain = draft.Uncertain

	for _, warning := range draft.LengthWarnings() {
		d.logger.Warn("draft length guideline exceeded", logging.String("detail", warning))
	}
	if draft.Uncertain {
		d.logger.Warn("draft confidence below threshold",
			logging.Float64("confidence", draft.Confidence))
	}
	d.logger.Info("draft generated",
		logging.String("title", draft.Title),
		logging.Int("description_chars", len([]rune(draft.Description))),
		logging.Float64("confidence", draft.Confidence),
	)
	item.SetProgress("Drafting", "Publishing copy ready")
	return nil
}

func (d *Drafter) HealthCheck(ctx context.Context) stage.Health {
	const name = "draft"
	if strings.TrimSpace(d.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy(name, "llm api key not configured")
	}
	return stage.Healthy(name)
}
