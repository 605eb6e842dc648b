package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tgagor/stow/pkg/builder"
	"github.com/tgagor/stow/pkg/config"
	"github.com/tgagor/stow/pkg/dockerfile"
	"github.com/tgagor/stow/pkg/labels"
	"github.com/tgagor/stow/pkg/logger"
	"github.com/tgagor/stow/pkg/util"
)

var BuildVersion string // Will be set dynamically at build time.
var appName string = "stow"

func newRootCmd() *cobra.Command {
	var flags config.Flags

	root := &cobra.Command{
		Use:   appName,
		Short: "Builds container images of Go projects from a generated multi-stage Dockerfile.",
		Long: `A CLI tool that renders a two-stage Dockerfile from the project's stow.yaml
and drives 'docker buildx' to build and publish the image.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(flags.Verbose, flags.NoColor)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If version flag is provided, show the version and exit.
			if flags.PrintVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", appName, BuildVersion)
				return nil
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&flags.ProjectDir, "project", "C", ".", "Project directory, used as build context")
	root.PersistentFlags().StringVarP(&flags.BuildFile, "config", "c", config.DefaultBuildFile, "Path to the build file, relative to the project directory")
	root.PersistentFlags().StringVar(&flags.Engine, "engine", builder.DefaultEngine, "Container engine executable")
	root.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "Dotenv file with variables passed to the engine")
	root.PersistentFlags().BoolVar(&flags.DryRun, "dry-run", false, "Print engine commands but don't execute them")
	root.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable color output")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Increase verbosity of output")
	root.Flags().BoolVarP(&flags.PrintVersion, "version", "V", false, "Display the application version and exit")

	root.AddCommand(newDockerfileCmd(&flags), newBuildCmd(&flags), newPushCmd(&flags))
	return root
}

func newDockerfileCmd(flags *config.Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "dockerfile",
		Short: "Just render the Dockerfile, no build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log.Info().Str("file", flags.Output).Msg("Saving Dockerfile to")
			return dockerfile.Save(cfg, flags.Output)
		},
	}
	c.Flags().StringVarP(&flags.Output, "output", "o", "Dockerfile", "Where to write the rendered Dockerfile")
	return c
}

func newBuildCmd(flags *config.Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "build",
		Short: "Build the container image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := builder.ParseCacheMode(flags.CacheMode)
			if err != nil {
				return err
			}
			cfg, file, err := loadConfig(flags)
			if err != nil {
				return err
			}
			d, err := newBuilder(flags, file)
			if err != nil {
				return err
			}

			log.Info().Str("image", cfg.TargetImage).Str("cache_mode", mode.String()).Msg("Building")
			if err := d.Build(cmd.Context(), cfg, mode); err != nil {
				return err
			}
			if flags.Push {
				log.Info().Str("image", cfg.TargetImage).Msg("Pushing")
				return d.Push(cmd.Context(), cfg.TargetImage)
			}
			return nil
		},
	}
	c.Flags().StringVar(&flags.CacheMode, "cache-mode", builder.Local.String(), "Cache backend: local or gha")
	c.Flags().StringVar(&flags.CacheID, "cache-id", "", "Shared cache key for the gha backend (default from build file, then "+config.DefaultCacheID+")")
	c.Flags().StringVar(&flags.Workdir, "workdir", builder.DefaultWorkdir, "Working directory inside the project for the Dockerfile and build reports")
	c.Flags().StringVarP(&flags.Tag, "tag", "t", "", "Version recorded in the OCI version label")
	c.Flags().BoolVarP(&flags.Push, "push", "p", false, "Push the image after building")
	c.Flags().BoolVar(&flags.Labels, "labels", false, "Add OCI labels read from the git repository")
	c.Flags().BoolVar(&flags.Unique, "unique", false, "Render into a uniquely named Dockerfile and remove it afterwards, dry runs included")
	c.Flags().BoolVarP(&flags.Delete, "delete", "d", false, "Delete the rendered Dockerfile after successful building")
	return c
}

func newPushCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push the image to the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, file, err := loadConfig(flags)
			if err != nil {
				return err
			}
			d, err := newBuilder(flags, file)
			if err != nil {
				return err
			}
			log.Info().Str("image", cfg.TargetImage).Msg("Pushing")
			return d.Push(cmd.Context(), cfg.TargetImage)
		},
	}
}

func loadConfig(flags *config.Flags) (config.Config, *config.File, error) {
	buildFile := flags.BuildFile
	if !filepath.IsAbs(buildFile) {
		buildFile = filepath.Join(flags.ProjectDir, buildFile)
	}
	log.Debug().Str("config", buildFile).Msg("Loading")
	file, err := config.LoadWithDefaults(buildFile, config.UserDefaultsPath())
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := file.Resolve(flags.ProjectDir)
	if err != nil {
		return config.Config{}, nil, err
	}
	log.Debug().Interface("config", cfg).Msg("Loaded")
	return cfg, file, nil
}

func newBuilder(flags *config.Flags, file *config.File) (*builder.Docker, error) {
	env, err := config.ReadEnvFile(flags.EnvFile)
	if err != nil {
		return nil, err
	}
	cacheID := flags.CacheID
	if cacheID == "" {
		cacheID = file.CacheID()
	}
	opts := builder.Options{
		Engine:     flags.Engine,
		ProjectDir: flags.ProjectDir,
		Workdir:    flags.Workdir,
		CacheID:    cacheID,
		Env:        env,
		Unique:     flags.Unique,
		Delete:     flags.Delete,
		DryRun:     flags.DryRun,
		Verbose:    flags.Verbose,
	}
	if flags.Labels {
		opts.Labels = labels.Collect(flags.ProjectDir, flags.Tag)
	} else {
		opts.Labels = labels.Version(flags.Tag)
	}
	return builder.New(opts)
}

func init() {
	if BuildVersion == "" {
		BuildVersion = "development" // Fallback if not set during build
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	util.FailOnError(err)
}
