package config

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/distribution/reference"

	"github.com/tgagor/stow/pkg/errs"
)

// Characters with a meaning to either the Dockerfile parser or /bin/sh.
const metaChars = "\\`$;&|<>\"'(){}[]*?!#"

var (
	packageName  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+:=~_-]*$`)
	artifactName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Validate checks that every field is safe to substitute into the Dockerfile.
func (c Config) Validate() error {
	if err := CheckImage("image", c.TargetImage); err != nil {
		return err
	}
	if err := CheckImage("base_image", c.BaseImage); err != nil {
		return err
	}
	if err := checkPackages("build_deps", c.BuildDeps); err != nil {
		return err
	}
	if err := checkPackages("runtime_deps", c.RuntimeDeps); err != nil {
		return err
	}
	if c.Artifact == "" {
		return errs.Configf("artifact must not be empty")
	}
	if err := CheckSlot("artifact", c.Artifact); err != nil {
		return err
	}
	if !artifactName.MatchString(c.Artifact) {
		return errs.Configf("artifact %q is not a valid binary name", c.Artifact)
	}
	return nil
}

// CheckSlot rejects values carrying control or metacharacters.
func CheckSlot(field, value string) error {
	for _, r := range value {
		if unicode.IsControl(r) {
			return errs.Configf("%s contains control character %U", field, r)
		}
		if strings.ContainsRune(metaChars, r) {
			return errs.Configf("%s contains forbidden character %q", field, r)
		}
	}
	return nil
}

// CheckImage requires value to be a safe, normalized image reference.
func CheckImage(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.Configf("%s must not be empty", field)
	}
	if err := CheckSlot(field, value); err != nil {
		return err
	}
	if strings.ContainsAny(value, " ") {
		return errs.Configf("%s %q must not contain spaces", field, value)
	}
	if _, err := reference.ParseNormalizedNamed(value); err != nil {
		return errs.Configf("%s %q is not a valid image reference: %w", field, value, err)
	}
	return nil
}

func checkPackages(field, value string) error {
	if err := CheckSlot(field, value); err != nil {
		return err
	}
	for _, pkg := range strings.Split(value, " ") {
		if pkg == "" {
			if value == "" {
				return nil
			}
			return errs.Configf("%s %q has empty package names, separate with single spaces", field, value)
		}
		if !packageName.MatchString(pkg) {
			return errs.Configf("%s: %q is not a valid package name", field, pkg)
		}
	}
	return nil
}
