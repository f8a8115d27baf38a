package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnvVar selects the log level: debug, info, warn, error (default: info).
const LevelEnvVar = "MENULENS_LOG_LEVEL"

// Init configures the global logger from MENULENS_LOG_LEVEL with a console
// writer on stderr.
func Init() {
	InitWithWriter(os.Getenv(LevelEnvVar), zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitJSON configures the global logger to write JSON lines to stderr, for
// environments where logs are machine-ingested (Lambda).
func InitJSON() {
	InitWithWriter(os.Getenv(LevelEnvVar), os.Stderr)
}

// InitWithWriter sets the global level and output writer.
func InitWithWriter(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
