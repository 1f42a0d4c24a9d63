package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePublisher(); err != nil {
		return err
	}
	if err := c.validateMailer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.PlaylistID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/repost/config.toml"
		}
		return fmt.Errorf("catalog.playlist_id is required. Edit %s (create with 'repost config init')", defaultPath)
	}
	if c.Catalog.TokenFile == "" {
		return errors.New("catalog.token_file must be set")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if c.Transcriber.Command == "" {
		return errors.New("transcriber.command must be set")
	}
	if c.Transcriber.TaskSheet == "" {
		return errors.New("transcriber.task_sheet must be set")
	}
	if c.Transcriber.OutputDir == "" {
		return errors.New("transcriber.output_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required. Set REPOST_LLM_API_KEY or add it to the config file")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validatePublisher() error {
	if c.Publisher.CreatorURL == "" {
		return errors.New("publisher.creator_url must be set")
	}
	if c.Publisher.ProfileDir == "" {
		return errors.New("publisher.profile_dir must be set")
	}
	return nil
}

func (c *Config) validateMailer() error {
	// Mail is optional; when a host is configured the rest must be coherent.
	if c.Mailer.Host == "" {
		return nil
	}
	if c.Mailer.From == "" {
		return errors.New("mailer.from must be set when mailer.host is configured")
	}
	if len(c.Mailer.To) == 0 {
		return errors.New("mailer.to must list at least one recipient when mailer.host is configured")
	}
	if c.Mailer.Port <= 0 || c.Mailer.Port > 65535 {
		return fmt.Errorf("mailer.port %d out of range", c.Mailer.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
