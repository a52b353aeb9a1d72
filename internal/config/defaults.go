package config

const (
	defaultFPS               = "30000/1001"
	defaultChapterLanguage   = "eng"
	defaultChapterName       = "Chapter %02d"
	defaultMkvmergeBinary    = "mkvmerge"
	defaultMkvmergeTimeout   = 600
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultConfigPath        = "~/.config/vfrchap/config.toml"
	defaultProjectConfigFile = "vfrchap.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Timecodes: Timecodes{
			DefaultFPS: defaultFPS,
		},
		Chapters: Chapters{
			Language:   defaultChapterLanguage,
			NameFormat: defaultChapterName,
		},
		Audio: Audio{
			MkvmergeBinary: defaultMkvmergeBinary,
			TimeoutSeconds: defaultMkvmergeTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
