package builder

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tgagor/stow/pkg/cmd"
	"github.com/tgagor/stow/pkg/config"
	"github.com/tgagor/stow/pkg/dockerfile"
	"github.com/tgagor/stow/pkg/errs"
	"github.com/tgagor/stow/pkg/labels"
	"github.com/tgagor/stow/pkg/runner"
	"github.com/tgagor/stow/pkg/util"
)

const (
	DefaultEngine  = "docker"
	DefaultWorkdir = ".stow"
	DockerfileName = "Dockerfile"
)

var cacheIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type Options struct {
	// Engine is the docker compatible executable.
	Engine string
	// ProjectDir is the build context and the directory commands run in.
	ProjectDir string
	// Workdir holds the rendered Dockerfile and build reports. It is always
	// resolved inside ProjectDir.
	Workdir string
	CacheID string
	Labels  map[string]string
	// Env entries (KEY=VALUE) are added to the engine's environment.
	Env []string
	// Unique renders into Dockerfile-<uuid> instead of the shared Dockerfile
	// and always removes it afterwards, dry runs included.
	Unique bool
	// Delete removes the rendered Dockerfile after a successful build.
	Delete  bool
	DryRun  bool
	Verbose bool
}

var _ Builder = (*Docker)(nil)

type Docker struct {
	opts Options
}

func New(opts Options) (*Docker, error) {
	if opts.Engine == "" {
		opts.Engine = DefaultEngine
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if opts.Workdir == "" {
		opts.Workdir = DefaultWorkdir
	}
	if opts.CacheID == "" {
		opts.CacheID = config.DefaultCacheID
	}
	if !cacheIDPattern.MatchString(opts.CacheID) {
		return nil, errs.Configf("cache id %q may only contain letters, digits, '.', '_' and '-'", opts.CacheID)
	}
	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, errs.IOPath("resolve project directory", opts.ProjectDir, err)
	}
	opts.ProjectDir = projectDir
	return &Docker{opts: opts}, nil
}

// Workdir returns the absolute working directory inside the project.
func (d *Docker) Workdir() (string, error) {
	dir, err := securejoin.SecureJoin(d.opts.ProjectDir, d.opts.Workdir)
	if err != nil {
		return "", errs.IOPath("resolve working directory", d.opts.Workdir, err)
	}
	return dir, nil
}

// BuildCommand assembles the buildx invocation. With Local the arguments
// end at the build context; RemoteShared appends its cache block after it.
func (d *Docker) BuildCommand(cfg config.Config, mode CacheMode, dockerfilePath, workdir string) *cmd.Cmd {
	return cmd.New(d.opts.Engine).
		Arg("buildx", "build").
		Arg("-t", cfg.TargetImage).
		Arg("-f", dockerfilePath).
		Arg(labels.ToArgs(d.opts.Labels)...).
		Arg(".").
		Arg(mode.Args(d.opts.CacheID, workdir)...).
		Dir(d.opts.ProjectDir).
		Env(d.opts.Env...).
		SetVerbose(d.opts.Verbose).
		PreInfo("Building " + cfg.TargetImage).
		PostInfo("Built " + cfg.TargetImage)
}

func (d *Docker) PushCommand(image string) *cmd.Cmd {
	return cmd.New(d.opts.Engine).
		Arg("push", image).
		Dir(d.opts.ProjectDir).
		Env(d.opts.Env...).
		SetVerbose(d.opts.Verbose).
		PreInfo("Pushing " + image).
		PostInfo("Pushed " + image)
}

// Build renders cfg into the working directory and runs the engine on it.
// Nothing is retried and a failed build leaves the rendered file in place.
func (d *Docker) Build(ctx context.Context, cfg config.Config, mode CacheMode) error {
	workdir, err := d.Workdir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", workdir).Msg("Failed to create working directory")
		return errs.IOPath("create working directory", workdir, err)
	}

	name := DockerfileName
	if d.opts.Unique {
		name = DockerfileName + "-" + uuid.NewString()
	}
	dockerfilePath := filepath.Join(workdir, name)
	log.Debug().Str("dockerfile", dockerfilePath).Msg("Generating")
	if err := dockerfile.Save(cfg, dockerfilePath); err != nil {
		return err
	}
	ignorePath, err := d.writeIgnoreFile(dockerfilePath, workdir)
	if err != nil {
		return err
	}
	if mode == RemoteShared && !d.opts.DryRun {
		util.RemoveFile(filepath.Join(workdir, IIDFile), filepath.Join(workdir, MetadataFile))
	}

	builder := d.BuildCommand(cfg, mode, dockerfilePath, workdir)
	log.Info().Str("image", cfg.TargetImage).Str("cache", mode.String()).Msg("Building")
	if err := runner.New().DryRun(d.opts.DryRun).AddTask(builder).Run(ctx); err != nil {
		log.Error().Err(err).Msg("Building failed with error, check error above.")
		return err
	}

	if mode == RemoteShared && !d.opts.DryRun {
		d.logReports(workdir)
	}
	if d.opts.Delete || d.opts.Unique {
		util.RemoveFile(dockerfilePath, ignorePath)
	}
	return nil
}

// Push publishes image. Nothing is retried.
func (d *Docker) Push(ctx context.Context, image string) error {
	if err := config.CheckImage("image", image); err != nil {
		return err
	}
	if err := runner.New().DryRun(d.opts.DryRun).AddTask(d.PushCommand(image)).Run(ctx); err != nil {
		log.Error().Err(err).Msg("Pushing image failed, check error above.")
		return err
	}
	return nil
}

func (d *Docker) logReports(workdir string) {
	id, err := ImageID(workdir)
	if err != nil {
		util.WarnOnError(err, "Could not read build reports")
		return
	}
	log.Info().Str("id", id.String()).Msg("Built image")

	metadata, err := Metadata(workdir)
	if err != nil {
		util.WarnOnError(err, "Could not read build metadata")
		return
	}
	if digest, ok := metadata["containerimage.digest"]; ok {
		log.Debug().Interface("digest", digest).Msg("Image manifest")
	}
}
