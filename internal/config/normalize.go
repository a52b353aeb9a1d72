package config

import (
	"fmt"
	"strings"

	"vfrchap/internal/language"
)

func (c *Config) normalize() error {
	c.normalizeTimecodes()
	if err := c.normalizeChapters(); err != nil {
		return err
	}
	c.normalizeAudio()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeTimecodes() {
	c.Timecodes.DefaultFPS = strings.TrimSpace(c.Timecodes.DefaultFPS)
	if c.Timecodes.DefaultFPS == "" {
		c.Timecodes.DefaultFPS = defaultFPS
	}
}

func (c *Config) normalizeChapters() error {
	lang := strings.TrimSpace(c.Chapters.Language)
	if lang == "" {
		lang = defaultChapterLanguage
	}
	code, err := language.Chapter(lang)
	if err != nil {
		return fmt.Errorf("chapters.language: %w", err)
	}
	c.Chapters.Language = code
	country, err := language.Country(c.Chapters.Country)
	if err != nil {
		return fmt.Errorf("chapters.country: %w", err)
	}
	c.Chapters.Country = country
	if strings.TrimSpace(c.Chapters.NameFormat) == "" {
		c.Chapters.NameFormat = defaultChapterName
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.MkvmergeBinary = strings.TrimSpace(c.Audio.MkvmergeBinary)
	if c.Audio.MkvmergeBinary == "" {
		c.Audio.MkvmergeBinary = defaultMkvmergeBinary
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		path, err := expandPath(strings.TrimSpace(c.Logging.File))
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = path
	}
	return nil
}
