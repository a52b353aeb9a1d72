package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vfrchap/internal/config"
)

func TestLoadDefaultConfigWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantPath := filepath.Join(tempHome, ".config", "vfrchap", "config.toml")
	if resolved != wantPath {
		t.Fatalf("resolved = %q, want %q", resolved, wantPath)
	}
	if cfg.Timecodes.DefaultFPS != "30000/1001" {
		t.Fatalf("unexpected default fps: %q", cfg.Timecodes.DefaultFPS)
	}
	if cfg.Chapters.Language != "eng" {
		t.Fatalf("unexpected chapter language: %q", cfg.Chapters.Language)
	}
	if cfg.MkvmergeBinary() != "mkvmerge" {
		t.Fatalf("unexpected mkvmerge binary: %q", cfg.MkvmergeBinary())
	}
	if got := cfg.ChapterName(3); got != "Chapter 03" {
		t.Fatalf("ChapterName(3) = %q", got)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "vfrchap.toml"), []byte("[timecodes]\ndefault_fps = \"25\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected project config to be found")
	}
	if filepath.Base(resolved) != "vfrchap.toml" {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Timecodes.DefaultFPS != "25" {
		t.Fatalf("default fps = %q, want 25", cfg.Timecodes.DefaultFPS)
	}
}

func TestLoadCustomPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.toml")

	type payload struct {
		Chapters struct {
			Language string `toml:"language"`
			Country  string `toml:"country"`
		} `toml:"chapters"`
		Audio struct {
			MkvmergeBinary string `toml:"mkvmerge_binary"`
			Merge          bool   `toml:"merge"`
		} `toml:"audio"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Chapters.Language = "German"
	custom.Chapters.Country = "DE"
	custom.Audio.MkvmergeBinary = " /opt/mkvtoolnix/mkvmerge "
	custom.Audio.Merge = true
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Chapters.Language != "ger" || cfg.Chapters.Country != "de" {
		t.Fatalf("unexpected chapter locale: %q/%q", cfg.Chapters.Language, cfg.Chapters.Country)
	}
	if cfg.MkvmergeBinary() != "/opt/mkvtoolnix/mkvmerge" {
		t.Fatalf("unexpected mkvmerge binary: %q", cfg.MkvmergeBinary())
	}
	if !cfg.Audio.Merge {
		t.Fatal("expected merge enabled")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Timecodes.DefaultFPS != config.Default().Timecodes.DefaultFPS {
		t.Fatalf("unset default fps should keep default, got %q", cfg.Timecodes.DefaultFPS)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad fps", "[timecodes]\ndefault_fps = \"fast\"\n", "timecodes.default_fps"},
		{"bad language", "[chapters]\nlanguage = \"klingonese\"\n", "chapters.language"},
		{"bad country", "[chapters]\ncountry = \"zz9\"\n", "chapters.country"},
		{"bad name format", "[chapters]\nname_format = \"Chapter\"\n", "chapters.name_format"},
		{"negative timeout", "[audio]\ntimeout_seconds = -1\n", "audio.timeout_seconds"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"unknown key", "[audio]\nmerge_parts = true\n", "merge_parts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	want := config.Default()
	if cfg.Timecodes != want.Timecodes || cfg.Audio != want.Audio || cfg.Keyframes != want.Keyframes {
		t.Fatalf("sample differs from defaults: %+v", cfg)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/logs/vfrchap.log")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "logs", "vfrchap.log"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}
