package config

const (
	defaultSourceWorkspace  = "wem-collection"
	defaultOutputWorkspace  = "ogg-collection"
	defaultLogDir           = "logs"
	defaultOutputCSV        = "voicelines.csv"
	defaultToolsDir         = "tools"
	defaultWw2oggBinary     = "ww2ogg"
	defaultRevorbBinary     = "revorb"
	defaultCodebooksName    = "packed_codebooks_aoTuV_603.bin"
	defaultDecodeTimeout    = 120
	defaultNormalizeTimeout = 120
	defaultWhisperBinary    = "whisper-ctranslate2"
	defaultWhisperModel     = "small"
	defaultWhisperDevice    = "auto"
	defaultWhisperLanguage  = "auto"
	defaultWhisperTimeout   = 600
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults. Workspace
// paths are relative and resolved against the invocation directory during
// normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceWorkspace: defaultSourceWorkspace,
			OutputWorkspace: defaultOutputWorkspace,
			LogDir:          defaultLogDir,
			OutputCSV:       defaultOutputCSV,
		},
		Tools: Tools{
			Dir:              defaultToolsDir,
			Ww2oggBinary:     defaultWw2oggBinary,
			RevorbBinary:     defaultRevorbBinary,
			CodebooksPath:    defaultCodebooksName,
			DecodeTimeout:    defaultDecodeTimeout,
			NormalizeTimeout: defaultNormalizeTimeout,
		},
		Whisper: Whisper{
			Binary:   defaultWhisperBinary,
			Model:    defaultWhisperModel,
			Device:   defaultWhisperDevice,
			Language: defaultWhisperLanguage,
			Timeout:  defaultWhisperTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
