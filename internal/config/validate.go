package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var fpsPattern = regexp.MustCompile(`^\d+(?:\.\d+)?(?:\s*[/:]\s*\d+(?:\.\d+)?)?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTimecodes(); err != nil {
		return err
	}
	if err := c.validateChapters(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTimecodes() error {
	if !fpsPattern.MatchString(c.Timecodes.DefaultFPS) {
		return fmt.Errorf("timecodes.default_fps %q must be a rate such as 24, 23.976 or 30000/1001", c.Timecodes.DefaultFPS)
	}
	return nil
}

func (c *Config) validateChapters() error {
	if strings.Count(c.Chapters.NameFormat, "%") != 1 || !strings.Contains(c.Chapters.NameFormat, "d") {
		return fmt.Errorf("chapters.name_format %q must contain exactly one integer verb such as %%02d", c.Chapters.NameFormat)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TimeoutSeconds < 0 {
		return errors.New("audio.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
