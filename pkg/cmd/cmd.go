package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tgagor/stow/pkg/errs"
)

type Cmd struct {
	cmd      string
	args     []string
	dir      string
	env      []string
	verbose  bool
	preText  string
	postText string
}

func New(c string) *Cmd {
	return &Cmd{
		cmd:      c,
		verbose:  false,
		preText:  "",
		postText: "",
	}
}

func (c *Cmd) Equal(cmd *Cmd) bool {
	return c.String() == cmd.String() && c.dir == cmd.dir
}

func (c *Cmd) Arg(args ...string) *Cmd {
	c.args = append(c.args, args...)
	return c
}

// Args returns a copy of the arguments, without the executable.
func (c *Cmd) Args() []string {
	return append([]string(nil), c.args...)
}

func (c *Cmd) Name() string {
	return c.cmd
}

func (c *Cmd) Dir(dir string) *Cmd {
	c.dir = dir
	return c
}

// Env adds KEY=VALUE pairs on top of the inherited environment.
func (c *Cmd) Env(env ...string) *Cmd {
	c.env = append(c.env, env...)
	return c
}

func (c *Cmd) SetVerbose(verbosity bool) *Cmd {
	c.verbose = verbosity
	return c
}

func (c *Cmd) PreInfo(msg string) *Cmd {
	c.preText = msg
	return c
}

func (c *Cmd) PostInfo(msg string) *Cmd {
	c.postText = msg
	return c
}

// Run starts the command and waits for it. Failing to start it yields an
// errs.Spawn error, a non-zero exit an errs.Exit error carrying the status.
// Cancelling ctx kills the process.
func (c *Cmd) Run(ctx context.Context) (string, error) {
	if c.cmd == "" {
		return "", errs.New(errs.Spawn, "run", errors.New("command not set"))
	}
	if c.preText != "" {
		log.Info().Msg(c.preText)
	}

	cmd := exec.CommandContext(ctx, c.cmd, c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	// pipe the commands output to the applications
	var b bytes.Buffer
	if c.verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}

	log.Debug().Str("cmd", c.cmd).Interface("args", c.args).Msg("Running")
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			log.Warn().Str("cmd", c.cmd).Msg("Command was cancelled before it started")
			return "", errs.Exited(c.cmd, -1, ctx.Err())
		}
		log.Error().Err(err).Str("cmd", c.cmd).Msg("Could not start command")
		return "", errs.New(errs.Spawn, "start "+c.cmd, err)
	}
	err := cmd.Wait()
	output := b.String()

	// Check for context cancellation or timeout
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Warn().Str("cmd", c.cmd).Msg("Command was cancelled")
		} else if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn().Str("cmd", c.cmd).Msg("Command timed out")
		}
		return output, errs.Exited(c.cmd, exitCode(cmd), ctx.Err())
	}

	if err != nil {
		log.Error().Err(err).Str("cmd", c.cmd).Interface("args", c.args).Msg("Command failed")
		if output != "" {
			log.Error().Msg(output)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, errs.Exited(c.cmd, exitErr.ExitCode(), err)
		}
		return output, errs.New(errs.IO, "wait for "+c.cmd, err)
	}

	if c.postText != "" {
		log.Info().Msg(c.postText)
	}
	return output, nil
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func (c *Cmd) String() string {
	return strings.Trim(fmt.Sprintf("%s %s", c.cmd, strings.Join(c.args, " ")), " ")
}
