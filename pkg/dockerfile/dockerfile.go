// Package dockerfile renders the two-stage Dockerfile used to build a Go
// project image.
package dockerfile

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog/log"

	"github.com/tgagor/stow/pkg/config"
	"github.com/tgagor/stow/pkg/errs"
)

var tpl = template.Must(
	template.New("Dockerfile").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(ubuntuTemplate),
)

// Slots lists the names substituted into the template.
var Slots = []string{"TargetImage", "BaseImage", "BuildDeps", "RuntimeDeps", "Artifact"}

// Render validates cfg and returns the Dockerfile text. It does not touch
// the filesystem.
func Render(cfg config.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return execute(slots(cfg))
}

// Save renders cfg into the given file, replacing its content.
func Save(cfg config.Config, destinationFile string) error {
	rendered, err := Render(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destinationFile, []byte(rendered), 0o644); err != nil {
		log.Error().Err(err).Str("file", destinationFile).Msg("Failed to write")
		return errs.IOPath("write Dockerfile", destinationFile, err)
	}
	log.Debug().Str("file", destinationFile).Msg("Saved Dockerfile")
	return nil
}

func slots(cfg config.Config) map[string]any {
	return map[string]any{
		"TargetImage": cfg.TargetImage,
		"BaseImage":   cfg.BaseImage,
		"BuildDeps":   cfg.BuildDeps,
		"RuntimeDeps": cfg.RuntimeDeps,
		"Artifact":    cfg.Artifact,
	}
}

func execute(data map[string]any) (string, error) {
	for _, name := range Slots {
		value, ok := data[name]
		if !ok {
			return "", errs.New(errs.Template, "render Dockerfile", fmt.Errorf("slot %s is not set", name))
		}
		if s, ok := value.(string); ok {
			if err := config.CheckSlot(name, s); err != nil {
				return "", err
			}
		}
	}
	data["GoVersion"] = GoVersion

	var output bytes.Buffer
	if err := tpl.Execute(&output, data); err != nil {
		log.Error().Err(err).Msg("Failed to template")
		return "", errs.New(errs.Template, "render Dockerfile", err)
	}
	log.Trace().Str("dockerfile", output.String()).Msg("Rendered")
	return output.String(), nil
}
