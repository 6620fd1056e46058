// /internal/logging/logging.go
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the global zerolog logger. Console output always; file
// output with rotation when logFile is non-empty.
func Setup(level, logFile string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var out io.Writer = console
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, rotator)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
