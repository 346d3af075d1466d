package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Build    BuildConfig    `yaml:"build"`
	Profiles ProfilesConfig `yaml:"profiles"`
}

// BuildConfig holds the defaults a build starts from before profiles and
// command-line overrides are applied.
type BuildConfig struct {
	Configuration   string   `yaml:"configuration"`
	Verbosity       string   `yaml:"verbosity"`
	Parallelism     int      `yaml:"parallelism"`
	Targets         []string `yaml:"targets"`
	Feeds           []string `yaml:"feeds"`
	OutputDir       string   `yaml:"output_dir"`
	Publish         bool     `yaml:"publish"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	APIToken        string   `yaml:"api_token"`
	SigningPassword string   `yaml:"signing_password"`
}

type ProfilesConfig struct {
	// Dir overrides the profile directory (default <home>/temp). Relative
	// paths resolve against the kiln home.
	Dir string `yaml:"dir"`
}

func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Configuration: "Debug",
			Verbosity:     "normal",
			Parallelism:   0,
			Targets:       []string{"default"},
			Feeds:         nil,
			OutputDir:     "output",
			Publish:       false,
		},
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields DefaultConfig.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return Load(path)
}

func Save(path string, cfg Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func validate(cfg Config) error {
	return ValidateBuild(cfg.Build)
}

// ValidateBuild checks build settings after every layer has been applied.
func ValidateBuild(b BuildConfig) error {
	switch b.Configuration {
	case "Debug", "Release":
	default:
		return errors.New("build.configuration must be Debug|Release")
	}
	switch b.Verbosity {
	case "quiet", "minimal", "normal", "verbose":
	default:
		return errors.New("build.verbosity must be quiet|minimal|normal|verbose")
	}
	if b.Parallelism < 0 || b.Parallelism > 256 {
		return errors.New("build.parallelism must be 0..256")
	}
	if len(b.Targets) == 0 {
		return errors.New("build.targets must name at least one target")
	}
	if b.OutputDir == "" {
		return errors.New("build.output_dir is required")
	}
	if b.Publish && b.APIToken == "" {
		return errors.New("build.publish requires build.api_token")
	}
	return nil
}
