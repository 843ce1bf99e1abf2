package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chartconv.log")
	var stderr bytes.Buffer

	l := &Logger{Format: "json", File: path, MaxSize: 1}
	logger := zerolog.New(l.writer(&stderr))
	logger.Info().Str("layer", "airspace").Msg("Layer written")

	assert.JSONEq(t, `{"level":"info","layer":"airspace","message":"Layer written"}`, stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, stderr.String(), string(data))
}

func TestWriterConsole(t *testing.T) {
	var stderr bytes.Buffer

	logger := zerolog.New((&Logger{Format: "console"}).writer(&stderr))
	logger.Warn().Msg("No chart data recognised")

	assert.Contains(t, stderr.String(), "No chart data recognised")
	assert.NotContains(t, stderr.String(), `"message"`)
}

func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "ERROR", want: zerolog.ErrorLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		(&Logger{Level: tt.level, Format: "json"}).Setup()
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), tt.level)
	}
}
