package builder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher/ignorefile"

	"github.com/tgagor/stow/pkg/errs"
)

// IgnoreFileSuffix is appended to the Dockerfile path to name the ignore
// file the engine reads for that Dockerfile only.
const IgnoreFileSuffix = ".dockerignore"

// writeIgnoreFile keeps the working directory out of the build context. The
// engine uses it instead of the project's .dockerignore, so those patterns
// are carried over first.
func (d *Docker) writeIgnoreFile(dockerfilePath, workdir string) (string, error) {
	patterns, err := projectIgnorePatterns(d.opts.ProjectDir)
	if err != nil {
		return "", err
	}
	patterns = append(patterns, workdirPatterns(d.opts.ProjectDir, workdir)...)

	path := dockerfilePath + IgnoreFileSuffix
	if err := os.WriteFile(path, []byte(strings.Join(patterns, "\n")+"\n"), 0o644); err != nil {
		return "", errs.IOPath("write ignore file", path, err)
	}
	return path, nil
}

func projectIgnorePatterns(projectDir string) ([]string, error) {
	path := filepath.Join(projectDir, ".dockerignore")
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.IOPath("open ignore file", path, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, errs.IOPath("read ignore file", path, err)
	}
	return patterns, nil
}

// workdirPatterns excludes the whole working directory, or only stow's own
// files when it is the project root.
func workdirPatterns(projectDir, workdir string) []string {
	rel, err := filepath.Rel(projectDir, workdir)
	if err != nil || rel == "." {
		return []string{DockerfileName + "*", IIDFile, MetadataFile}
	}
	return []string{filepath.ToSlash(rel)}
}
