// Package build holds the live configuration of one kiln run.
package build

import (
	"fmt"
	"io"
	"strings"

	"kiln/internal/config"
	"kiln/internal/params"
	"kiln/internal/profile"
)

const EnvPrefix = "KILN_"

// Build is the configuration a run executes with. Parameters are listed in
// Schema and Flags; other fields are derived per run and never persisted.
type Build struct {
	Configuration   string
	Verbosity       string
	Parallelism     int
	Targets         []string
	Feeds           []string
	OutputDir       string
	Publish         bool
	APIToken        string
	SigningPassword string

	continueOnError bool

	Root string
}

func FromConfig(cfg config.BuildConfig, root string) Build {
	return Build{
		Configuration:   cfg.Configuration,
		Verbosity:       cfg.Verbosity,
		Parallelism:     cfg.Parallelism,
		Targets:         append([]string(nil), cfg.Targets...),
		Feeds:           append([]string(nil), cfg.Feeds...),
		OutputDir:       cfg.OutputDir,
		Publish:         cfg.Publish,
		APIToken:        cfg.APIToken,
		SigningPassword: cfg.SigningPassword,
		continueOnError: cfg.ContinueOnError,
		Root:            root,
	}
}

func (b Build) ContinueOnError() bool { return b.continueOnError }

var Schema = profile.MustSchema(
	profile.Param("configuration", func(b *Build) *string { return &b.Configuration }),
	profile.Param("verbosity", func(b *Build) *string { return &b.Verbosity }),
	profile.Param("parallelism", func(b *Build) *int { return &b.Parallelism }),
	profile.Param("target", func(b *Build) *[]string { return &b.Targets }),
	profile.Param("feed", func(b *Build) *[]string { return &b.Feeds }),
	profile.Param("output", func(b *Build) *string { return &b.OutputDir }),
	profile.Param("publish", func(b *Build) *bool { return &b.Publish }),
	profile.Param("continue", func(b *Build) *bool { return &b.continueOnError }),
	profile.Secret("api-token", func(b *Build) *string { return &b.APIToken }),
	profile.Secret("signing-password", func(b *Build) *string { return &b.SigningPassword }),
)

// Flags returns the command-line parameters. Names match Schema members.
func Flags() []params.Flag[Build] {
	return []params.Flag[Build]{
		params.String("configuration", "build configuration (Debug|Release)", func(b *Build) *string { return &b.Configuration }),
		params.String("verbosity", "log verbosity (quiet|minimal|normal|verbose)", func(b *Build) *string { return &b.Verbosity }),
		params.Int("parallelism", "max parallel steps (0 = number of CPUs)", func(b *Build) *int { return &b.Parallelism }),
		params.Strings("target", "targets to run", func(b *Build) *[]string { return &b.Targets }),
		params.Strings("feed", "package feeds", func(b *Build) *[]string { return &b.Feeds }),
		params.String("output", "output directory", func(b *Build) *string { return &b.OutputDir }),
		params.Bool("publish", "publish artifacts after a successful build", func(b *Build) *bool { return &b.Publish }),
		params.Bool("continue", "keep running independent targets after a failure", func(b *Build) *bool { return &b.continueOnError }),
		params.String("api-token", "feed API token (secret)", func(b *Build) *string { return &b.APIToken }),
		params.String("signing-password", "code signing password (secret)", func(b *Build) *string { return &b.SigningPassword }),
	}
}

func NewBinder(defaults Build) *params.Binder[Build] {
	return params.NewBinder("build", EnvPrefix, defaults, Flags()...)
}

func (b Build) Validate() error {
	return config.ValidateBuild(config.BuildConfig{
		Configuration:   b.Configuration,
		Verbosity:       b.Verbosity,
		Parallelism:     b.Parallelism,
		Targets:         b.Targets,
		Feeds:           b.Feeds,
		OutputDir:       b.OutputDir,
		Publish:         b.Publish,
		ContinueOnError: b.continueOnError,
		APIToken:        b.APIToken,
		SigningPassword: b.SigningPassword,
	})
}

// WriteSummary prints the effective parameters. Secret values are masked.
func (b Build) WriteSummary(w io.Writer) error {
	lines := []struct {
		key, value string
	}{
		{"configuration", b.Configuration},
		{"verbosity", b.Verbosity},
		{"parallelism", fmt.Sprint(b.Parallelism)},
		{"target", strings.Join(b.Targets, ",")},
		{"feed", strings.Join(b.Feeds, ",")},
		{"output", b.OutputDir},
		{"publish", fmt.Sprint(b.Publish)},
		{"continue", fmt.Sprint(b.continueOnError)},
		{"api-token", Mask(b.APIToken)},
		{"signing-password", Mask(b.SigningPassword)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-17s %s\n", l.key+":", l.value); err != nil {
			return err
		}
	}
	return nil
}

func Mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "********"
}
