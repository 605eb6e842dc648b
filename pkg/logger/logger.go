package logger

import (
	"io"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger for console output.
func Init(verbose bool, noColor bool) {
	log.Logger = New(colorable.NewColorableStdout(), verbose, noColor)
	zerolog.SetGlobalLevel(Level(verbose))
}

func New(out io.Writer, verbose bool, noColor bool) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:          out,
		NoColor:      noColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(writer).Level(Level(verbose))
}

func Level(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
