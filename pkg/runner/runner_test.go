package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gruntwork-io/terratest/modules/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgagor/stow/pkg/cmd"
	"github.com/tgagor/stow/pkg/errs"
	"github.com/tgagor/stow/pkg/runner"
)

// touch returns a command that creates marker inside dir and exits with code.
func touch(t *testing.T, dir, marker string, code string) *cmd.Cmd {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	return cmd.New("/bin/sh").Arg("-c", "touch "+filepath.Join(dir, marker)+"; exit "+code)
}

func TestAddTaskKeepsUniq(t *testing.T) {
	r := runner.New().
		AddTask(cmd.New("docker").Arg("push", "a")).
		AddTask(cmd.New("docker").Arg("push", "a"), cmd.New("docker").Arg("push", "b"))

	assert.Len(t, r.Tasks(), 2)
	assert.True(t, r.Contains(cmd.New("docker").Arg("push", "b")))
	assert.False(t, r.Contains(cmd.New("docker").Arg("push", "c")))
}

func TestRunInOrderStopsAtFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := runner.New().
		AddTask(touch(t, dir, "first", "0")).
		AddTask(touch(t, dir, "second", "4")).
		AddTask(touch(t, dir, "third", "0")).
		Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 4, errs.ExitCode(err))
	assert.True(t, files.FileExists(filepath.Join(dir, "first")))
	assert.True(t, files.FileExists(filepath.Join(dir, "second")))
	assert.False(t, files.FileExists(filepath.Join(dir, "third")))
}

func TestDryRunExecutesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := runner.New().
		DryRun(true).
		AddTask(touch(t, dir, "first", "1")).
		Run(context.Background())

	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "first"))
	assert.True(t, os.IsNotExist(statErr))
}
