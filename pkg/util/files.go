package util

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
)

// RemoveFile deletes generated files, logging instead of failing.
func RemoveFile(files ...string) {
	for _, file := range files {
		log.Debug().Str("file", file).Msg("Removing temporary")
		err := os.Remove(file)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Str("file", file).Msg("Already gone")
		default:
			log.Error().Err(err).Str("file", file).Msg("Failed to remove")
		}
	}
}
