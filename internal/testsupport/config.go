package testsupport

import (
	"path/filepath"
	"testing"

	"repost/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields so Validate passes, and applies any options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.RecordsDir = filepath.Join(base, "records")
	cfgVal.Catalog.PlaylistID = "PLtest"
	cfgVal.Catalog.TokenFile = filepath.Join(base, "token.json")
	cfgVal.Transcriber.Command = filepath.Join(base, "batchtool")
	cfgVal.Transcriber.TaskSheet = filepath.Join(base, "tasks.xlsx")
	cfgVal.Transcriber.OutputDir = filepath.Join(base, "output")
	cfgVal.LLM.APIKey = "test"
	cfgVal.Publisher.CreatorURL = "https://creator.example.com/publish"
	cfgVal.Publisher.ProfileDir = filepath.Join(base, "profile")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithMailer configures an SMTP endpoint on the test config.
func WithMailer(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mailer.Host = host
		b.cfg.Mailer.Port = port
		b.cfg.Mailer.From = "bot@example.com"
		b.cfg.Mailer.To = []string{"ops@example.com"}
	}
}

// WithTranscriberTimeout overrides the batch tool poll and timeout settings.
func WithTranscriberTimeout(pollSeconds, timeoutMinutes int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcriber.PollIntervalSeconds = pollSeconds
		b.cfg.Transcriber.TimeoutMinutes = timeoutMinutes
	}
}
