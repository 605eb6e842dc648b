package runner

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tgagor/stow/pkg/cmd"
)

// Runner executes queued commands one after another.
type Runner struct {
	tasks  []*cmd.Cmd
	dryRun bool
}

func New() *Runner {
	return &Runner{
		tasks:  []*cmd.Cmd{},
		dryRun: false,
	}
}

func (r *Runner) Contains(task *cmd.Cmd) bool {
	for _, t := range r.tasks {
		if t.Equal(task) {
			return true
		}
	}
	return false
}

func (r *Runner) AddTask(task ...*cmd.Cmd) *Runner {
	// add only uniq calls
	for _, t := range task {
		if !r.Contains(t) {
			r.tasks = append(r.tasks, t)
		}
	}
	return r
}

func (r *Runner) DryRun(flag bool) *Runner {
	r.dryRun = flag
	return r
}

func (r *Runner) Tasks() []*cmd.Cmd {
	return r.tasks
}

// Run stops at the first failing task and returns its error.
func (r *Runner) Run(ctx context.Context) error {
	for _, c := range r.tasks {
		if r.dryRun {
			log.Info().Str("cmd", c.String()).Msg("DRY-RUN: Run")
			continue
		}
		if _, err := c.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
