package builder

import (
	"fmt"
	"path/filepath"

	"github.com/tgagor/stow/pkg/errs"
)

type CacheMode int

const (
	// Local leaves caching to the engine's own local cache.
	Local CacheMode = iota
	// RemoteShared imports and exports the cache through the GitHub Actions
	// cache backend, under one key shared by every project using it.
	RemoteShared
)

const (
	IIDFile      = "build-iidfile.txt"
	MetadataFile = "build-metadata.json"
)

func (m CacheMode) String() string {
	switch m {
	case Local:
		return "local"
	case RemoteShared:
		return "gha"
	default:
		return fmt.Sprintf("CacheMode(%d)", int(m))
	}
}

// ParseCacheMode accepts the command line literals "local" and "gha".
func ParseCacheMode(s string) (CacheMode, error) {
	switch s {
	case "local":
		return Local, nil
	case "gha":
		return RemoteShared, nil
	default:
		return Local, errs.Configf("unknown cache mode %q, use local or gha", s)
	}
}

// Args returns the flags appended after the build context. The order is
// fixed.
func (m CacheMode) Args(cacheID, reportDir string) []string {
	if m != RemoteShared {
		return nil
	}
	return []string{
		"--cache-from", "type=gha,id=" + cacheID,
		"--cache-to", "type=gha,mode=max,id=" + cacheID,
		"--output=type=docker",
		"--iidfile=" + filepath.Join(reportDir, IIDFile),
		"--metadata-file=" + filepath.Join(reportDir, MetadataFile),
	}
}
