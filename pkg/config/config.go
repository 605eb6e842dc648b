package config

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/tgagor/stow/pkg/errs"
)

const (
	DefaultBuildFile = "stow.yaml"
	DefaultCacheID   = "deadbeef"
	appName          = "stow"
)

// File is the build file as written by the user.
type File struct {
	Image       string    `yaml:"image"`
	BaseImage   string    `yaml:"base_image"`
	BuildDeps   []string  `yaml:"build_deps"`
	RuntimeDeps []string  `yaml:"runtime_deps"`
	Artifact    string    `yaml:"artifact"`
	Cache       CacheFile `yaml:"cache"`
}

type CacheFile struct {
	ID string `yaml:"id"`
}

// Config is the validated input of rendering and building. It is never
// modified after New returns it.
type Config struct {
	TargetImage string
	BaseImage   string
	BuildDeps   string
	RuntimeDeps string
	Artifact    string
}

func Load(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		log.Error().Err(err).Msg("Error loading config")
		return nil, errs.IOPath("open build file", filename, err)
	}
	defer file.Close()

	var f File
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		log.Error().Err(err).Msg("Decoding YAML " + filename + " failed! Check syntax and try again")
		return nil, &errs.Error{Kind: errs.Config, Op: "decode build file", Path: filename, Err: err}
	}
	return &f, nil
}

// UserDefaultsPath points at the optional per-user defaults file.
func UserDefaultsPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// LoadWithDefaults reads the project build file and fills its blanks from
// the user defaults file, when one exists.
func LoadWithDefaults(filename, defaultsFile string) (*File, error) {
	f, err := Load(filename)
	if err != nil {
		return nil, err
	}
	if defaultsFile == "" {
		return f, nil
	}
	if _, err := os.Stat(defaultsFile); errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	defaults, err := Load(defaultsFile)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", defaultsFile).Msg("Applying user defaults")
	f.Merge(defaults)
	return f, nil
}

// Merge copies values from defaults into fields left empty in f.
func (f *File) Merge(defaults *File) {
	if defaults == nil {
		return
	}
	if f.Image == "" {
		f.Image = defaults.Image
	}
	if f.BaseImage == "" {
		f.BaseImage = defaults.BaseImage
	}
	if len(f.BuildDeps) == 0 {
		f.BuildDeps = defaults.BuildDeps
	}
	if len(f.RuntimeDeps) == 0 {
		f.RuntimeDeps = defaults.RuntimeDeps
	}
	if f.Artifact == "" {
		f.Artifact = defaults.Artifact
	}
	if f.Cache.ID == "" {
		f.Cache.ID = defaults.Cache.ID
	}
}

func (f *File) CacheID() string {
	if f.Cache.ID == "" {
		return DefaultCacheID
	}
	return f.Cache.ID
}

// Resolve turns the build file into a validated Config. An empty artifact
// falls back to the module name found in projectDir/go.mod.
func (f *File) Resolve(projectDir string) (Config, error) {
	artifact := f.Artifact
	if artifact == "" {
		name, err := ModuleBinaryName(filepath.Join(projectDir, "go.mod"))
		if err != nil {
			return Config{}, err
		}
		log.Debug().Str("artifact", name).Msg("Using module name as")
		artifact = name
	}
	return New(f.Image, f.BaseImage, strings.Join(f.BuildDeps, " "), strings.Join(f.RuntimeDeps, " "), artifact)
}

// New builds a Config and validates every field.
func New(targetImage, baseImage, buildDeps, runtimeDeps, artifact string) (Config, error) {
	cfg := Config{
		TargetImage: targetImage,
		BaseImage:   baseImage,
		BuildDeps:   buildDeps,
		RuntimeDeps: runtimeDeps,
		Artifact:    artifact,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// ModuleBinaryName derives the default binary name from a go.mod file, the
// same name `go build` would pick.
func ModuleBinaryName(gomod string) (string, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", errs.Configf("artifact is not set and %s is not readable: %w", gomod, err)
	}
	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", errs.Configf("artifact is not set and %s has no module directive", gomod)
	}
	name := path.Base(modulePath)
	if majorVersion.MatchString(name) && path.Dir(modulePath) != "." {
		name = path.Base(path.Dir(modulePath))
	}
	return name, nil
}
