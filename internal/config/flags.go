package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagEncoding = flag.String("encoding", "", "Input text encoding (utf-8, euc-kr, shift_jis, windows-1252, iso-8859-1)")
	flagMaxLines = flag.Int("max-lines", -1, "Reject inputs with more lines (0 = unlimited)")
	flagMaxBytes = flag.Int64("max-bytes", -1, "Reject inputs larger than this many bytes (0 = unlimited)")
	flagFormat   = flag.String("format", "", "Output format: text or yaml")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagEncoding != "" {
		cfg.Parse.Encoding = *flagEncoding
	}
	if *flagMaxLines >= 0 {
		cfg.Parse.MaxLines = *flagMaxLines
	}
	if *flagMaxBytes >= 0 {
		cfg.Parse.MaxBytes = *flagMaxBytes
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
