// Package params binds the parameters of a configuration object to
// command-line flags and environment variables, and reports which of them
// were supplied explicitly for the current run.
package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"

	"kiln/internal/profile"
)

const (
	SaveProfileFlag = "save-profile"
	ProfileFlag     = "profile"

	// saveDefault is what a bare --save-profile parses to.
	saveDefault = "true"
)

// Flag describes one parameter of T.
type Flag[T any] struct {
	Name     string
	register func(fs *pflag.FlagSet, obj *T)
	copy     func(dst, src *T)
}

func String[T any](name, usage string, field func(obj *T) *string) Flag[T] {
	return Flag[T]{
		Name: name,
		register: func(fs *pflag.FlagSet, obj *T) {
			fs.StringVar(field(obj), name, *field(obj), usage)
		},
		copy: copyField(field),
	}
}

func Int[T any](name, usage string, field func(obj *T) *int) Flag[T] {
	return Flag[T]{
		Name: name,
		register: func(fs *pflag.FlagSet, obj *T) {
			fs.IntVar(field(obj), name, *field(obj), usage)
		},
		copy: copyField(field),
	}
}

func Bool[T any](name, usage string, field func(obj *T) *bool) Flag[T] {
	return Flag[T]{
		Name: name,
		register: func(fs *pflag.FlagSet, obj *T) {
			fs.BoolVar(field(obj), name, *field(obj), usage)
		},
		copy: copyField(field),
	}
}

// Strings binds a comma-separated list flag.
func Strings[T any](name, usage string, field func(obj *T) *[]string) Flag[T] {
	return Flag[T]{
		Name: name,
		register: func(fs *pflag.FlagSet, obj *T) {
			fs.StringSliceVar(field(obj), name, *field(obj), usage)
		},
		copy: func(dst, src *T) {
			*field(dst) = append([]string(nil), *field(src)...)
		},
	}
}

func copyField[T, V any](field func(obj *T) *V) func(dst, src *T) {
	return func(dst, src *T) { *field(dst) = *field(src) }
}

// EnvName maps a flag name to its environment variable.
func EnvName(prefix, name string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Binder parses the parameters of T into a staging copy. Values supplied by
// flag or environment are overrides; Apply copies exactly those onto a
// live object.
type Binder[T any] struct {
	fs        *pflag.FlagSet
	staging   *T
	flags     []Flag[T]
	envPrefix string
	fromEnv   map[string]bool

	saveProfile  string
	loadProfiles []string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

func NewBinder[T any](name, envPrefix string, defaults T, flags ...Flag[T]) *Binder[T] {
	b := &Binder[T]{
		fs:        pflag.NewFlagSet(name, pflag.ContinueOnError),
		staging:   &defaults,
		flags:     flags,
		envPrefix: envPrefix,
		fromEnv:   make(map[string]bool),
		LookupEnv: os.LookupEnv,
	}
	for _, f := range flags {
		f.register(b.fs, b.staging)
	}
	b.fs.StringVar(&b.saveProfile, SaveProfileFlag, "", "save overridden parameters to profile `name[:key]` and exit (bare flag: default profile)")
	b.fs.Lookup(SaveProfileFlag).NoOptDefVal = saveDefault
	b.fs.StringArrayVarP(&b.loadProfiles, ProfileFlag, "p", nil, "load profile `name[:key]` (repeatable, applied in order)")
	return b
}

func (b *Binder[T]) FlagSet() *pflag.FlagSet {
	return b.fs
}

// Parse reads args and then the environment. An environment variable only
// counts for parameters not given on the command line.
func (b *Binder[T]) Parse(args []string) error {
	if err := b.fs.Parse(args); err != nil {
		return err
	}
	for _, f := range b.flags {
		if b.fs.Changed(f.Name) {
			continue
		}
		key := EnvName(b.envPrefix, f.Name)
		v, ok := b.LookupEnv(key)
		if !ok {
			continue
		}
		if err := b.fs.Lookup(f.Name).Value.Set(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		b.fromEnv[f.Name] = true
	}
	if !b.fs.Changed(SaveProfileFlag) {
		if v, ok := b.LookupEnv(EnvName(b.envPrefix, SaveProfileFlag)); ok {
			b.saveProfile = saveFromEnv(v)
		}
	}
	if !b.fs.Changed(ProfileFlag) {
		if v, ok := b.LookupEnv(EnvName(b.envPrefix, ProfileFlag)); ok {
			specs, err := shlex.Split(v)
			if err != nil {
				return fmt.Errorf("%s: %w", EnvName(b.envPrefix, ProfileFlag), err)
			}
			b.loadProfiles = specs
		}
	}
	return nil
}

// saveFromEnv reads KILN_SAVE_PROFILE. Boolean spellings select the default
// profile or disable saving; anything else is a profile spec.
func saveFromEnv(v string) string {
	on, err := strconv.ParseBool(v)
	switch {
	case err != nil:
		return v
	case on:
		return saveDefault
	default:
		return ""
	}
}

// Args returns the positional arguments left after parsing.
func (b *Binder[T]) Args() []string {
	return b.fs.Args()
}

// Overridden reports whether name was given by flag or environment.
func (b *Binder[T]) Overridden(name string) bool {
	if !b.isParam(name) {
		return false
	}
	return b.fromEnv[name] || b.fs.Changed(name)
}

func (b *Binder[T]) isParam(name string) bool {
	for _, f := range b.flags {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Apply copies every overridden parameter onto dst.
func (b *Binder[T]) Apply(dst *T) {
	for _, f := range b.flags {
		if b.Overridden(f.Name) {
			f.copy(dst, b.staging)
		}
	}
}

func (b *Binder[T]) Directives() profile.Directives {
	d := profile.Directives{Load: append([]string(nil), b.loadProfiles...)}
	switch b.saveProfile {
	case "", "false":
	case saveDefault:
		d.SaveDefault = true
	default:
		d.Save = b.saveProfile
	}
	return d
}
