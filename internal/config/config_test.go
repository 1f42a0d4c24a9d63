package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[catalog]
playlist_id = "PL123"

[transcriber]
command = "python"
work_dir = "/opt/batchtool"
task_sheet = "batch/tasks_setting.xlsx"
output_dir = "batch/output"

[llm]
api_key = "sk-test"
model = "deepseek/deepseek-chat"
`

func TestLoadMinimalConfig(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to resolve, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Catalog.PlaylistID != "PL123" {
		t.Fatalf("unexpected playlist id: %q", cfg.Catalog.PlaylistID)
	}
	if cfg.Transcriber.PollIntervalSeconds != defaultTranscriberPollSeconds {
		t.Fatalf("expected default poll interval, got %d", cfg.Transcriber.PollIntervalSeconds)
	}
	if cfg.Publisher.CreatorURL == "" {
		t.Fatal("expected default creator url")
	}
}

func TestLoadResolvesRelativeToolPaths(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Transcriber.TaskSheet != filepath.Join("/opt/batchtool", "batch/tasks_setting.xlsx") {
		t.Fatalf("task sheet not resolved against work dir: %q", cfg.Transcriber.TaskSheet)
	}
	if cfg.Transcriber.OutputDir != filepath.Join("/opt/batchtool", "batch/output") {
		t.Fatalf("output dir not resolved against work dir: %q", cfg.Transcriber.OutputDir)
	}
}

func TestLoadRequiresPlaylist(t *testing.T) {
	path := writeConfig(t, strings.Replace(minimalConfig, `playlist_id = "PL123"`, "", 1))

	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "catalog.playlist_id") {
		t.Fatalf("expected playlist validation error, got %v", err)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("REPOST_LLM_API_KEY", "sk-from-env")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Fatalf("expected env override, got %q", cfg.LLM.APIKey)
	}
}

func TestEnvFileSeedsSecrets(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "secrets.env")
	if err := os.WriteFile(envPath, []byte("REPOST_SMTP_PASSWORD=hunter2\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	body := minimalConfig + "\n[paths]\nenv_file = \"" + envPath + "\"\n"
	path := writeConfig(t, body)
	t.Setenv("REPOST_SMTP_PASSWORD", "")
	os.Unsetenv("REPOST_SMTP_PASSWORD")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mailer.Password != "hunter2" {
		t.Fatalf("expected password from env file, got %q", cfg.Mailer.Password)
	}
}

func TestNormalizeTagsStripsMarkers(t *testing.T) {
	cfg := Default()
	cfg.Catalog.PlaylistID = "PL"
	cfg.Transcriber.Command = "tool"
	cfg.Transcriber.TaskSheet = "/tmp/sheet.xlsx"
	cfg.Transcriber.OutputDir = "/tmp/out"
	cfg.LLM.APIKey = "k"
	cfg.Publisher.Tags = []string{" #科技 ", "新闻", "", "#"}

	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	want := []string{"科技", "新闻"}
	if len(cfg.Publisher.Tags) != len(want) {
		t.Fatalf("unexpected tags: %#v", cfg.Publisher.Tags)
	}
	for i, tag := range want {
		if cfg.Publisher.Tags[i] != tag {
			t.Fatalf("unexpected tags: %#v", cfg.Publisher.Tags)
		}
	}
}

func TestValidateMailerRequiresRecipients(t *testing.T) {
	cfg := Default()
	cfg.Catalog.PlaylistID = "PL"
	cfg.Transcriber.Command = "tool"
	cfg.Transcriber.TaskSheet = "/tmp/sheet.xlsx"
	cfg.Transcriber.OutputDir = "/tmp/out"
	cfg.LLM.APIKey = "k"
	cfg.Mailer.Host = "smtp.example.com"
	cfg.Mailer.From = "repost@example.com"

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "mailer.to") {
		t.Fatalf("expected recipient validation error, got %v", err)
	}
}
