package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	if err := c.normalizeTranscriber(); err != nil {
		return err
	}
	if err := c.normalizePublisher(); err != nil {
		return err
	}
	if err := c.normalizeWorkflow(); err != nil {
		return err
	}
	c.normalizeMailer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.RecordsDir, err = expandPath(c.Paths.RecordsDir); err != nil {
		return fmt.Errorf("paths.records_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.PlaylistID = strings.TrimSpace(c.Catalog.PlaylistID)
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	var err error
	if c.Catalog.TokenFile, err = expandPath(c.Catalog.TokenFile); err != nil {
		return fmt.Errorf("catalog.token_file: %w", err)
	}
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultCatalogRequestTimeout
	}
	return nil
}

func (c *Config) normalizeTranscriber() error {
	c.Transcriber.Command = strings.TrimSpace(c.Transcriber.Command)
	var err error
	if c.Transcriber.WorkDir != "" {
		if c.Transcriber.WorkDir, err = expandPath(c.Transcriber.WorkDir); err != nil {
			return fmt.Errorf("transcriber.work_dir: %w", err)
		}
	}
	// Relative task sheet and output dir resolve against the tool's work dir.
	if c.Transcriber.TaskSheet != "" && !filepath.IsAbs(c.Transcriber.TaskSheet) && c.Transcriber.WorkDir != "" {
		c.Transcriber.TaskSheet = filepath.Join(c.Transcriber.WorkDir, c.Transcriber.TaskSheet)
	} else if c.Transcriber.TaskSheet != "" {
		if c.Transcriber.TaskSheet, err = expandPath(c.Transcriber.TaskSheet); err != nil {
			return fmt.Errorf("transcriber.task_sheet: %w", err)
		}
	}
	if c.Transcriber.OutputDir != "" && !filepath.IsAbs(c.Transcriber.OutputDir) && c.Transcriber.WorkDir != "" {
		c.Transcriber.OutputDir = filepath.Join(c.Transcriber.WorkDir, c.Transcriber.OutputDir)
	} else if c.Transcriber.OutputDir != "" {
		if c.Transcriber.OutputDir, err = expandPath(c.Transcriber.OutputDir); err != nil {
			return fmt.Errorf("transcriber.output_dir: %w", err)
		}
	}
	if c.Transcriber.PollIntervalSeconds <= 0 {
		c.Transcriber.PollIntervalSeconds = defaultTranscriberPollSeconds
	}
	if c.Transcriber.TimeoutMinutes <= 0 {
		c.Transcriber.TimeoutMinutes = defaultTranscriberTimeoutMin
	}
	return nil
}

func (c *Config) normalizePublisher() error {
	c.Publisher.CreatorURL = strings.TrimSpace(c.Publisher.CreatorURL)
	if c.Publisher.CreatorURL == "" {
		c.Publisher.CreatorURL = defaultPublisherCreatorURL
	}
	var err error
	if c.Publisher.ProfileDir, err = expandPath(c.Publisher.ProfileDir); err != nil {
		return fmt.Errorf("publisher.profile_dir: %w", err)
	}
	if c.Publisher.ChromePath != "" {
		if c.Publisher.ChromePath, err = expandPath(c.Publisher.ChromePath); err != nil {
			return fmt.Errorf("publisher.chrome_path: %w", err)
		}
	}
	if c.Publisher.LoginWaitSeconds <= 0 {
		c.Publisher.LoginWaitSeconds = defaultPublisherLoginWait
	}
	if c.Publisher.UploadTimeoutSeconds <= 0 {
		c.Publisher.UploadTimeoutSeconds = defaultPublisherUploadTimeout
	}
	if c.Publisher.ReviewPauseSeconds < 0 {
		c.Publisher.ReviewPauseSeconds = defaultPublisherReviewPause
	}
	tags := make([]string, 0, len(c.Publisher.Tags))
	for _, tag := range c.Publisher.Tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	c.Publisher.Tags = tags
	return nil
}

func (c *Config) normalizeWorkflow() error {
	var err error
	if c.Workflow.LockFile, err = expandPath(c.Workflow.LockFile); err != nil {
		return fmt.Errorf("workflow.lock_file: %w", err)
	}
	if c.Workflow.LockStaleMinutes <= 0 {
		c.Workflow.LockStaleMinutes = defaultWorkflowLockStaleMinute
	}
	return nil
}

func (c *Config) normalizeMailer() {
	c.Mailer.Host = strings.TrimSpace(c.Mailer.Host)
	c.Mailer.From = strings.TrimSpace(c.Mailer.From)
	if c.Mailer.Port <= 0 {
		c.Mailer.Port = defaultMailerPort
	}
	if c.Mailer.TimeoutSeconds <= 0 {
		c.Mailer.TimeoutSeconds = defaultMailerTimeoutSeconds
	}
	to := make([]string, 0, len(c.Mailer.To))
	for _, addr := range c.Mailer.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	c.Mailer.To = to
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
