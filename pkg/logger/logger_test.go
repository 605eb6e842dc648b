package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tgagor/stow/pkg/logger"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.Level(true))
	assert.Equal(t, zerolog.InfoLevel, logger.Level(false))
}

func TestConsoleOutput(t *testing.T) {
	var out bytes.Buffer
	l := logger.New(&out, false, true)

	l.Debug().Msg("hidden")
	l.Info().Str("image", "registry/app:v1").Msg("Building")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "Building image=registry/app:v1")
}
