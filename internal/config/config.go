package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	LogDir     string `toml:"log_dir"`
	RecordsDir string `toml:"records_dir"`
	EnvFile    string `toml:"env_file"`
}

// Catalog contains configuration for the remote playlist that feeds the pipeline.
type Catalog struct {
	PlaylistID     string `toml:"playlist_id"`
	BaseURL        string `toml:"base_url"`
	TokenFile      string `toml:"token_file"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Transcriber contains configuration for the external batch transcription tool.
type Transcriber struct {
	Command             string   `toml:"command"`
	Args                []string `toml:"args"`
	WorkDir             string   `toml:"work_dir"`
	TaskSheet           string   `toml:"task_sheet"`
	OutputDir           string   `toml:"output_dir"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	TimeoutMinutes      int      `toml:"timeout_minutes"`
}

// LLM contains connection settings for draft generation.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Publisher contains configuration for the browser automation session.
type Publisher struct {
	CreatorURL           string   `toml:"creator_url"`
	ChromePath           string   `toml:"chrome_path"`
	ProfileDir           string   `toml:"profile_dir"`
	Headless             bool     `toml:"headless"`
	Tags                 []string `toml:"tags"`
	LoginWaitSeconds     int      `toml:"login_wait_seconds"`
	UploadTimeoutSeconds int      `toml:"upload_timeout_seconds"`
	ReviewPauseSeconds   int      `toml:"review_pause_seconds"`
}

// Mailer contains SMTP notification settings.
type Mailer struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	Username       string   `toml:"username"`
	Password       string   `toml:"password"`
	From           string   `toml:"from"`
	To             []string `toml:"to"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Workflow contains run-level tuning.
type Workflow struct {
	LockFile         string `toml:"lock_file"`
	LockStaleMinutes int    `toml:"lock_stale_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for repost.
//
// Configuration sections by subsystem:
//   - Paths: working, log, and record directories plus optional .env file
//   - Catalog: remote playlist API connection and OAuth token file
//   - Transcriber: external batch tool command, task sheet, and polling
//   - LLM: chat completion connection settings for draft generation
//   - Publisher: browser automation session settings
//   - Mailer: SMTP notification settings
//   - Workflow: run lock location and staleness
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Catalog     Catalog     `toml:"catalog"`
	Transcriber Transcriber `toml:"transcriber"`
	LLM         LLM         `toml:"llm"`
	Publisher   Publisher   `toml:"publisher"`
	Mailer      Mailer      `toml:"mailer"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/repost/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, and secrets overlaid from the
// environment (optionally seeded from a .env file).
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.loadEnvFile(); err != nil {
		return nil, "", false, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/repost/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("repost.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) loadEnvFile() error {
	envFile := strings.TrimSpace(c.Paths.EnvFile)
	if envFile == "" {
		return nil
	}
	expanded, err := expandPath(envFile)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

// applyEnvOverrides lets secrets live outside the config file. Environment
// values win over file values so a .env rotation takes effect without edits.
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("REPOST_LLM_API_KEY")); v != "" {
		c.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOST_SMTP_PASSWORD")); v != "" {
		c.Mailer.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOST_CATALOG_CLIENT_ID")); v != "" {
		c.Catalog.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOST_CATALOG_CLIENT_SECRET")); v != "" {
		c.Catalog.ClientSecret = v
	}
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.RecordsDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains common LLM settings consumed by the llm client.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
