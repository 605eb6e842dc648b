package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/gruntwork-io/terratest/modules/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgagor/stow/pkg/errs"
)

const buildFile = `image: registry/app:v1
base_image: ubuntu:22.04
build_deps: [libssl-dev]
runtime_deps: [ca-certificates]
`

// project lays out a Go project with a build file and a fake engine which
// records its arguments in <project>/engine-args.txt.
func project(t *testing.T) (dir string, engine string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stow.yaml"), []byte(buildFile), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module github.com/acme/app\n\ngo 1.22\n"), 0o644))

	engine = filepath.Join(t.TempDir(), "docker")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" >> \"" + filepath.Join(dir, "engine-args.txt") + "\"\nexit \"${FAKE_EXIT:-0}\"\n"
	require.NoError(t, os.WriteFile(engine, []byte(script), 0o755))
	return dir, engine
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func engineArgs(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "engine-args.txt"))
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestPrintVersion(t *testing.T) {
	out, err := run("-V")
	require.NoError(t, err)
	assert.Contains(t, out, "stow version: development")
}

func TestDockerfileCommand(t *testing.T) {
	dir, _ := project(t)
	output := filepath.Join(dir, "out", "Dockerfile")
	require.NoError(t, os.Mkdir(filepath.Dir(output), 0o755))

	_, err := run("-C", dir, "dockerfile", "--output", output)
	require.NoError(t, err)
	assert.True(t, files.FileExists(output))

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	// artifact name comes from go.mod
	assert.Contains(t, string(content), "ENTRYPOINT [\"/usr/bin/app\"]")
	assert.False(t, files.FileExists(filepath.Join(dir, "engine-args.txt")))
}

func TestBuildCommandLocal(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "build")
	require.NoError(t, err)

	dockerfilePath := filepath.Join(dir, ".stow", "Dockerfile")
	assert.True(t, files.FileExists(dockerfilePath))
	assert.True(t, files.FileExists(dockerfilePath+".dockerignore"))
	assert.Equal(t, []string{"buildx", "build", "-t", "registry/app:v1", "-f", dockerfilePath, "."}, engineArgs(t, dir))
}

func TestBuildCommandGhaAndPush(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "build", "--cache-mode", "gha", "--cache-id", "team", "--push")
	require.NoError(t, err)

	args := engineArgs(t, dir)
	require.Len(t, args, 7+7+2)
	assert.Equal(t, "type=gha,id=team", args[8])
	assert.Equal(t, []string{"push", "registry/app:v1"}, args[14:])
}

func TestBuildCommandTagWithoutGitLabels(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "build", "--tag", "v1.2.3")
	require.NoError(t, err)

	dockerfilePath := filepath.Join(dir, ".stow", "Dockerfile")
	assert.Equal(t, []string{
		"buildx", "build", "-t", "registry/app:v1", "-f", dockerfilePath,
		"--label", "org.opencontainers.image.version=v1.2.3",
		".",
	}, engineArgs(t, dir))
}

func TestBuildCommandUnknownCacheMode(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "build", "--cache-mode", "s3")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Config))
}

func TestBuildCommandEngineFailure(t *testing.T) {
	dir, engine := project(t)
	envFile := filepath.Join(dir, "ci.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FAKE_EXIT=2\n"), 0o644))

	_, err := run("-C", dir, "--engine", engine, "--env-file", envFile, "build", "--push")
	require.Error(t, err)
	assert.Equal(t, 2, errs.ExitCode(err))
	// push never ran
	assert.Len(t, engineArgs(t, dir), 7)
}

func TestPushCommand(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "push")
	require.NoError(t, err)
	assert.Equal(t, []string{"push", "registry/app:v1"}, engineArgs(t, dir))
}

func TestDryRun(t *testing.T) {
	dir, engine := project(t)

	_, err := run("-C", dir, "--engine", engine, "--dry-run", "build", "--push")
	require.NoError(t, err)
	assert.False(t, files.FileExists(filepath.Join(dir, "engine-args.txt")))
}

func TestMissingBuildFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	_, err := run("-C", t.TempDir(), "push")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.IO))
}
