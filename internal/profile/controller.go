package profile

import (
	"errors"
	"log"

	"kiln/internal/security"
)

// KeyProvider yields the host-bound key used when a spec carries none.
type KeyProvider interface {
	Fingerprint() (string, error)
}

// Directives are the profile requests of one run. Save names a profile
// spec to save to; SaveDefault saves to DefaultProfile. Load lists specs
// to apply in order.
type Directives struct {
	Save        string
	SaveDefault bool
	Load        []string
}

// SaveSpec returns the spec to save to, if saving was requested.
func (d Directives) SaveSpec() (string, bool) {
	if d.Save != "" {
		return d.Save, true
	}
	if d.SaveDefault {
		return DefaultProfile, true
	}
	return "", false
}

type Outcome int

const (
	// Continue means profiles were loaded and startup proceeds.
	Continue Outcome = iota
	// SaveAndTerminate means a profile was written and the caller must exit
	// successfully without running anything else.
	SaveAndTerminate
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case SaveAndTerminate:
		return "save-and-terminate"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Saved   string
	Path    string
	Loaded  []string
}

// Controller saves and loads profiles of T.
type Controller[T any] struct {
	Schema    *Schema[T]
	Store     *Store
	Keys      KeyProvider
	Overrides OverrideDetector
	Logger    *log.Logger

	// NewSealer builds the cipher for a resolved key. Nil uses
	// security.NewFieldCipher.
	NewSealer func(key string) (Sealer, error)
}

// Run evaluates d once. A save request preempts loading: the profile is
// written and SaveAndTerminate returned. A failed save returns the error
// and never SaveAndTerminate.
func (c *Controller[T]) Run(obj *T, d Directives) (Result, error) {
	if spec, ok := d.SaveSpec(); ok {
		path, err := c.Save(obj, spec)
		if err != nil {
			return Result{}, err
		}
		name, _ := ParseSpec(spec)
		return Result{Outcome: SaveAndTerminate, Saved: name.Name, Path: path}, nil
	}

	var loaded []string
	for _, spec := range c.LoadOrder(d.Load) {
		if err := c.Load(obj, spec); err != nil {
			return Result{}, err
		}
		name, _ := ParseSpec(spec)
		loaded = append(loaded, name.Name)
	}
	return Result{Outcome: Continue, Loaded: loaded}, nil
}

// LoadOrder puts DefaultProfile first when its file exists, followed by
// requested in the order given.
func (c *Controller[T]) LoadOrder(requested []string) []string {
	var order []string
	if c.Store.Exists(DefaultProfile) {
		order = append(order, DefaultProfile)
	}
	return append(order, requested...)
}

// Save writes the overridden members of obj to the profile named by raw
// and returns the file path.
func (c *Controller[T]) Save(obj *T, raw string) (string, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return "", &SaveError{Profile: raw, Err: err}
	}
	if c.Overrides == nil {
		return "", &SaveError{Profile: spec.Name, Err: errors.New("no override detector configured")}
	}
	sealer, err := c.sealer(spec)
	if err != nil {
		return "", &SaveError{Profile: spec.Name, Err: err}
	}
	data, err := encodeDocument(c.Schema, obj, c.Overrides, sealer)
	if err != nil {
		return "", &SaveError{Profile: spec.Name, Err: err}
	}
	path, err := c.Store.Write(spec.Name, data)
	if err != nil {
		return "", &SaveError{Profile: spec.Name, Err: err}
	}
	c.logf("profile: saved %s (%s)", spec, path)
	return path, nil
}

// Load applies every member present in the profile named by raw onto obj.
// Members absent from the document keep their current value. Nothing is
// applied if any member fails.
func (c *Controller[T]) Load(obj *T, raw string) error {
	spec, fields, err := c.decode(raw)
	if err != nil {
		return err
	}
	for _, f := range fields {
		f.apply(obj)
	}
	c.logf("profile: loaded %s (%d members)", spec, len(fields))
	return nil
}

// Describe decodes the profile named by raw without applying it. Secret
// values are returned in plaintext, so the key must be right.
func (c *Controller[T]) Describe(raw string) ([]Field, error) {
	_, fields, err := c.decode(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.field)
	}
	return out, nil
}

func (c *Controller[T]) decode(raw string) (Spec, []decoded[T], error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return Spec{}, nil, &LoadError{Profile: raw, Err: err}
	}
	data, err := c.Store.Read(spec.Name)
	if err != nil {
		return spec, nil, &LoadError{Profile: spec.Name, Err: err}
	}
	sealer, err := c.sealer(spec)
	if err != nil {
		return spec, nil, &LoadError{Profile: spec.Name, Err: err}
	}
	fields, err := decodeDocument(spec.Name, c.Schema, data, sealer)
	if err != nil {
		return spec, nil, &LoadError{Profile: spec.Name, Err: err}
	}
	return spec, fields, nil
}

func (c *Controller[T]) sealer(spec Spec) (Sealer, error) {
	key, err := c.resolveKey(spec)
	if err != nil {
		return nil, err
	}
	if c.NewSealer != nil {
		return c.NewSealer(key)
	}
	cipher, err := security.NewFieldCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher, nil
}

func (c *Controller[T]) resolveKey(spec Spec) (string, error) {
	if spec.HasKey() {
		return spec.Key, nil
	}
	if c.Keys == nil {
		return "", errors.New("no key given and no device key provider configured")
	}
	return c.Keys.Fingerprint()
}

func (c *Controller[T]) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
