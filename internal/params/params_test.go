package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Mode    string
	Workers int
	Dry     bool
	Feeds   []string
}

var settingFlags = []Flag[settings]{
	String("mode", "mode", func(s *settings) *string { return &s.Mode }),
	Int("workers", "workers", func(s *settings) *int { return &s.Workers }),
	Bool("dry", "dry run", func(s *settings) *bool { return &s.Dry }),
	Strings("feeds", "feeds", func(s *settings) *[]string { return &s.Feeds }),
}

func newTestBinder(env map[string]string) *Binder[settings] {
	b := NewBinder("test", "KILN_", settings{Mode: "fast", Workers: 1, Feeds: []string{"a"}}, settingFlags...)
	b.LookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return b
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "KILN_API_TOKEN", EnvName("KILN_", "api-token"))
	assert.Equal(t, "KILN_PROFILE", EnvName("KILN_", "profile"))
}

func TestOverriddenByFlag(t *testing.T) {
	b := newTestBinder(nil)
	require.NoError(t, b.Parse([]string{"--workers", "4", "run"}))

	assert.True(t, b.Overridden("workers"))
	assert.False(t, b.Overridden("mode"))
	assert.False(t, b.Overridden("unknown"))
	assert.False(t, b.Overridden(ProfileFlag))
	assert.Equal(t, []string{"run"}, b.Args())
}

func TestOverriddenByEnv(t *testing.T) {
	b := newTestBinder(map[string]string{"KILN_MODE": "slow", "KILN_FEEDS": "x,y"})
	require.NoError(t, b.Parse(nil))

	assert.True(t, b.Overridden("mode"))
	assert.True(t, b.Overridden("feeds"))
	assert.False(t, b.Overridden("workers"))

	live := settings{Mode: "from-config", Workers: 9, Feeds: []string{"cfg"}}
	b.Apply(&live)
	assert.Equal(t, settings{Mode: "slow", Workers: 9, Feeds: []string{"x", "y"}}, live)
}

func TestFlagBeatsEnv(t *testing.T) {
	b := newTestBinder(map[string]string{"KILN_MODE": "slow"})
	require.NoError(t, b.Parse([]string{"--mode=turbo"}))
	live := settings{}
	b.Apply(&live)
	assert.Equal(t, "turbo", live.Mode)
}

func TestBadEnvValue(t *testing.T) {
	b := newTestBinder(map[string]string{"KILN_WORKERS": "many"})
	err := b.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KILN_WORKERS")
}

func TestApplyOnlyOverridden(t *testing.T) {
	b := newTestBinder(nil)
	require.NoError(t, b.Parse([]string{"--dry"}))
	live := settings{Mode: "kept", Workers: 3}
	b.Apply(&live)
	assert.Equal(t, settings{Mode: "kept", Workers: 3, Dry: true}, live)
}

func TestApplyCopiesSlices(t *testing.T) {
	b := newTestBinder(nil)
	require.NoError(t, b.Parse([]string{"--feeds", "x"}))
	var first, second settings
	b.Apply(&first)
	b.Apply(&second)
	first.Feeds[0] = "mutated"
	assert.Equal(t, []string{"x"}, second.Feeds)
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         map[string]string
		save        string
		saveDefault bool
		load        []string
	}{
		{name: "none", args: nil},
		{name: "bare save", args: []string{"--save-profile"}, saveDefault: true},
		{name: "named save", args: []string{"--save-profile=release:k"}, save: "release:k"},
		{name: "env save default", env: map[string]string{"KILN_SAVE_PROFILE": "true"}, saveDefault: true},
		{name: "env save disabled", env: map[string]string{"KILN_SAVE_PROFILE": "false"}},
		{name: "env save default upper case", env: map[string]string{"KILN_SAVE_PROFILE": "TRUE"}, saveDefault: true},
		{name: "env save default numeric", env: map[string]string{"KILN_SAVE_PROFILE": "1"}, saveDefault: true},
		{name: "env save disabled numeric", env: map[string]string{"KILN_SAVE_PROFILE": "0"}},
		{name: "env save named", env: map[string]string{"KILN_SAVE_PROFILE": "ci"}, save: "ci"},
		{
			name: "load flags in order",
			args: []string{"-p", "a", "--profile", "b:key,with,commas"},
			load: []string{"a", "b:key,with,commas"},
		},
		{
			name: "load env split like a shell",
			env:  map[string]string{"KILN_PROFILE": `a "b:key with space"`},
			load: []string{"a", "b:key with space"},
		},
		{
			name: "load flag beats env",
			args: []string{"-p", "flag"},
			env:  map[string]string{"KILN_PROFILE": "env"},
			load: []string{"flag"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBinder(tt.env)
			require.NoError(t, b.Parse(tt.args))
			d := b.Directives()
			assert.Equal(t, tt.save, d.Save)
			assert.Equal(t, tt.saveDefault, d.SaveDefault)
			if tt.load == nil {
				assert.Empty(t, d.Load)
			} else {
				assert.Equal(t, tt.load, d.Load)
			}
		})
	}
}

func TestBadProfileEnv(t *testing.T) {
	b := newTestBinder(map[string]string{"KILN_PROFILE": `"unterminated`})
	require.Error(t, b.Parse(nil))
}
