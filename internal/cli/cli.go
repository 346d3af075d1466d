package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"kiln/internal/build"
	"kiln/internal/config"
	"kiln/internal/device"
	"kiln/internal/logging"
	"kiln/internal/paths"
	"kiln/internal/profile"
	"kiln/internal/version"
	"kiln/internal/watch"
)

// newKeyProvider supplies the key for profile specs without one.
var newKeyProvider = func() profile.KeyProvider {
	return device.NewProvider()
}

func Run(app string, args []string) int {
	return run(logging.New(), app, args, os.Stdout)
}

func run(logger *log.Logger, app string, args []string, out io.Writer) int {

	fs := pflag.NewFlagSet(app, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SetInterspersed(false)

	configPath := fs.String("config", "", "path to config file (default: <home>/kiln.yaml)")
	homePath := fs.String("home", "", "kiln home directory")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		usage(out, app)
		return 2
	}

	if *homePath != "" {
		_ = os.Setenv(paths.EnvHome, *homePath)
	}

	resolvedConfigPath := resolveConfigPath(*configPath)

	cfg, err := config.LoadOptional(resolvedConfigPath)
	if err != nil {
		logger.Printf("config error: %v", err)
		return 1
	}

	cmd := remaining[0]
	switch cmd {
	case "build":
		store, err := profileStore(cfg)
		if err != nil {
			logger.Printf("build: %v", err)
			return 1
		}
		return runBuild(logger, out, cfg, store, remaining[1:])
	case "profile":
		store, err := profileStore(cfg)
		if err != nil {
			logger.Printf("profile: %v", err)
			return 1
		}
		return runProfile(logger, out, store, remaining[1:])
	case "key":
		return runKey(logger, out, remaining[1:])
	case "init":
		return runInit(logger, out, resolvedConfigPath, remaining[1:])
	case "status":
		fmt.Fprintln(out, statusSummary(resolvedConfigPath, cfg))
		return 0
	case "version":
		fmt.Fprintln(out, version.Version)
		return 0
	case "help":
		usage(out, app)
		return 0
	default:
		logger.Printf("unknown command: %s", cmd)
		usage(out, app)
		return 2
	}
}

// runBuild evaluates profile directives before anything else. Saving a
// profile ends the run with status 0; the build itself never starts.
func runBuild(logger *log.Logger, out io.Writer, cfg config.Config, store *profile.Store, args []string) int {
	root, err := os.Getwd()
	if err != nil {
		logger.Printf("build: %v", err)
		return 1
	}
	defaults := build.FromConfig(cfg.Build, root)
	binder := build.NewBinder(defaults)
	binder.FlagSet().SetOutput(out)
	if err := binder.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		logger.Printf("build: %v", err)
		return 2
	}
	if extra := binder.Args(); len(extra) > 0 {
		logger.Printf("build: unexpected argument %q (name a profile with --save-profile=name)", extra[0])
		return 2
	}

	live := defaults
	binder.Apply(&live)

	ctrl := &profile.Controller[build.Build]{
		Schema:    build.Schema,
		Store:     store,
		Keys:      newKeyProvider(),
		Overrides: binder,
		Logger:    logger,
	}
	res, err := ctrl.Run(&live, binder.Directives())
	if err != nil {
		logger.Printf("build: %v", err)
		return 1
	}
	if res.Outcome == profile.SaveAndTerminate {
		logger.Printf("build: profile %s saved (%s)", res.Saved, res.Path)
		return 0
	}

	// Profiles may have replaced values given on this command line.
	binder.Apply(&live)

	if err := live.Validate(); err != nil {
		logger.Printf("build: %v", err)
		return 1
	}
	if len(res.Loaded) > 0 {
		logger.Printf("build: profiles %s", strings.Join(res.Loaded, ", "))
	}
	if err := live.WriteSummary(out); err != nil {
		logger.Printf("build: %v", err)
		return 1
	}
	logger.Printf("build: ok (targets=%s)", strings.Join(live.Targets, ","))
	return 0
}

func runProfile(logger *log.Logger, out io.Writer, store *profile.Store, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "profile: expected subcommand (list|show|delete|watch)")
		return 2
	}
	switch args[0] {
	case "list":
		names, err := store.List()
		if err != nil {
			logger.Printf("profile list: %v", err)
			return 1
		}
		for _, name := range names {
			if name == profile.DefaultProfile {
				fmt.Fprintf(out, "%s (loaded automatically)\n", name)
				continue
			}
			fmt.Fprintln(out, name)
		}
		return 0
	case "show":
		return runProfileShow(logger, out, store, args[1:])
	case "delete":
		if len(args) != 2 {
			fmt.Fprintln(out, "profile delete: expected <name>")
			return 2
		}
		spec, err := profile.ParseSpec(args[1])
		if err != nil {
			logger.Printf("profile delete: %v", err)
			return 2
		}
		if err := store.Delete(spec.Name); err != nil {
			logger.Printf("profile delete: %v", err)
			return 1
		}
		logger.Printf("profile delete: removed %s", spec.Name)
		return 0
	case "watch":
		return runProfileWatch(logger, out, store)
	default:
		fmt.Fprintln(out, "profile: expected subcommand (list|show|delete|watch)")
		return 2
	}
}

func runProfileShow(logger *log.Logger, out io.Writer, store *profile.Store, args []string) int {
	fs := pflag.NewFlagSet("profile show", pflag.ContinueOnError)
	fs.SetOutput(out)
	reveal := fs.Bool("reveal", false, "print secret values in plaintext")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(out, "profile show: expected <name[:key]>")
		return 2
	}

	ctrl := &profile.Controller[build.Build]{
		Schema: build.Schema,
		Store:  store,
		Keys:   newKeyProvider(),
	}
	fields, err := ctrl.Describe(fs.Arg(0))
	if err != nil {
		logger.Printf("profile show: %v", err)
		return 1
	}
	for _, f := range fields {
		value := string(f.Value)
		if f.Secret && !*reveal {
			value = build.Mask(value)
		}
		fmt.Fprintf(out, "%-17s %s\n", f.Name+":", value)
	}
	return 0
}

func runProfileWatch(logger *log.Logger, out io.Writer, store *profile.Store) int {
	if err := paths.EnsureDir(store.Dir); err != nil {
		logger.Printf("profile watch: %v", err)
		return 1
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stop, err := watch.Start(ctx, watch.Options{Dir: store.Dir, Extension: profile.Extension},
		func(ev watch.Event) {
			fmt.Fprintf(out, "%s %s\n", ev.Profile, ev.Op)
		},
		func(msg string) { logger.Print(msg) })
	if err != nil {
		logger.Printf("profile watch: %v", err)
		return 1
	}
	logger.Printf("profile watch: watching %s (Ctrl+C to stop)", store.Dir)
	<-ctx.Done()
	if err := stop(); err != nil {
		logger.Printf("profile watch: %v", err)
		return 1
	}
	return 0
}

func runKey(logger *log.Logger, out io.Writer, args []string) int {
	if len(args) == 0 || args[0] != "new" {
		fmt.Fprintln(out, "key: expected subcommand (new)")
		return 2
	}
	fs := pflag.NewFlagSet("key new", pflag.ContinueOnError)
	fs.SetOutput(out)
	bits := fs.Int("bits", 256, "key entropy in bits")
	group := fs.Int("group", 6, "characters per dash-separated group")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	key, err := profile.NewKey(*bits, *group)
	if err != nil {
		logger.Printf("key new: %v", err)
		return 1
	}
	fmt.Fprintln(out, key)
	return 0
}

func runInit(logger *log.Logger, out io.Writer, configPath string, args []string) int {
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	fs.SetOutput(out)

	force := fs.Bool("force", false, "overwrite existing config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := paths.EnsureDir(filepath.Dir(configPath)); err != nil {
		logger.Printf("init: %v", err)
		return 1
	}
	if _, err := os.Stat(configPath); err == nil && !*force {
		logger.Printf("init: config already exists (%s). Use --force to overwrite", configPath)
		return 1
	}
	if err := config.Save(configPath, config.DefaultConfig()); err != nil {
		logger.Printf("init: %v", err)
		return 1
	}
	logger.Printf("init: created %s", configPath)
	return 0
}

func usage(out io.Writer, app string) {
	fmt.Fprintf(out, "%s <command> [options]\n", app)
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprintln(out, "  --config <path>    path to config file (default: <home>/kiln.yaml)")
	fmt.Fprintln(out, "  --home <path>      kiln home directory (default: ~/.kiln, env KILN_HOME)")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  build [parameters] [--profile name[:key]]... [--save-profile[=name[:key]]]")
	fmt.Fprintln(out, "  profile list|show <name[:key]> [--reveal]|delete <name>|watch")
	fmt.Fprintln(out, "  key new [--bits 256] [--group 6]")
	fmt.Fprintln(out, "  init [--force]")
	fmt.Fprintln(out, "  status")
	fmt.Fprintln(out, "  version")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "Parameters may also be set as KILN_<NAME> (e.g. KILN_API_TOKEN).")
}

func profileStore(cfg config.Config) (*profile.Store, error) {
	if cfg.Profiles.Dir == "" {
		dir, err := paths.TemporaryDir()
		if err != nil {
			return nil, err
		}
		return profile.NewStore(dir), nil
	}
	homeDir, err := paths.HomeDir()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(paths.ResolveInHome(homeDir, cfg.Profiles.Dir)), nil
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	configPath, err := paths.ConfigPath()
	if err != nil {
		return paths.ConfigName
	}
	return configPath
}

func statusSummary(configPath string, cfg config.Config) string {
	store, err := profileStore(cfg)
	if err != nil {
		return fmt.Sprintf("status: ok (config: %s)", configPath)
	}
	names, err := store.List()
	if err != nil {
		return fmt.Sprintf("status: ok (config: %s, profiles: %v)", configPath, err)
	}
	return fmt.Sprintf("status: ok (config: %s, profiles: %s, count: %d)", configPath, store.Dir, len(names))
}
