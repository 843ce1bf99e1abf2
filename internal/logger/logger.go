// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger holds logging options, embedded into commands as a go-flags group.
type Logger struct {
	Level      string `long:"log-level"       env:"LOG_LEVEL"        description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format     string `long:"log-format"      env:"LOG_FORMAT"       description:"Log output format" choice:"console" choice:"json" default:"console"`
	File       string `long:"log-file"        env:"LOG_FILE"         description:"Also write JSON logs to this file, rotated by size"`
	MaxSize    int    `long:"log-max-size"    env:"LOG_MAX_SIZE"     description:"Log file size in MB before rotation" default:"32"`
	MaxBackups int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS"  description:"Rotated log files to keep" default:"3"`
}

// Setup applies the options to the global logger. Console output goes to
// stderr so command output on stdout stays machine readable.
func (l *Logger) Setup() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(l.writer(os.Stderr)).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err != nil {
		log.Warn().Str("level", l.Level).Msg("Unknown log level, using info")
	}
}

func (l *Logger) writer(stderr io.Writer) io.Writer {
	var out io.Writer = stderr
	if l.Format != "json" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.DateTime}
	}

	if l.File == "" {
		return out
	}

	file := &lumberjack.Logger{
		Filename:   l.File,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
	}
	return zerolog.MultiLevelWriter(out, file)
}

// String describes the effective options, e.g. for a startup message.
func (l *Logger) String() string {
	if l.File == "" {
		return fmt.Sprintf("level=%s format=%s", l.Level, l.Format)
	}
	return fmt.Sprintf("level=%s format=%s file=%s", l.Level, l.Format, l.File)
}
