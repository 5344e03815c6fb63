package main

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

	"github.com/example/lbmenu/internal/config"
	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/control"
	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/ipc"
	"github.com/example/lbmenu/internal/logging"
	"github.com/example/lbmenu/internal/menu"
	"github.com/example/lbmenu/internal/profiles"
	"github.com/example/lbmenu/internal/security"
	"github.com/example/lbmenu/internal/tray"
	"github.com/example/lbmenu/internal/tui"
)

const usage = `usage: lbmenu [global flags] [command] [args]

commands:
  tray                 show the menu in the system tray (default)
  tui                  show the menu in the terminal
  list                 print the actions of the current menu
  run <id|path>        launch one action
  init                 write a starter settings file
  encrypt              encrypt a settings file into settings.enc
  ctl <list|refresh|dispatch <id>>
                       talk to a running launcher

global flags:
`

func main() {
	log.SetFlags(0)

	cfg, args, err := parseGlobalFlags(config.Default(), os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.Debug {
		logging.EnableDebug()
	}

	closer, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := handleCLI(ctx, cfg, args, os.Stdout); err != nil {
		stop()
		closer.Close()
		log.Fatalf("%v", err)
	}
}

// parseGlobalFlags applies the flags that precede the command to cfg and
// returns the remaining arguments.
func parseGlobalFlags(cfg config.Config, args []string) (config.Config, []string, error) {
	fs := newFlagSet("lbmenu")
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, usage)
		fs.PrintDefaults()
	}

	fs.StringVarP(&cfg.SettingsRoot, "settings-root", "s", cfg.SettingsRoot, "directory holding settings, icons and the control token")
	fs.StringVar(&cfg.SettingsFile, "settings", cfg.SettingsFile, "explicit settings file, relative to the settings root")
	fs.StringVar(&cfg.ProfileDir, "profile-dir", cfg.ProfileDir, "directory scanned for Remmina profiles")
	noProfiles := fs.Bool("no-profiles", false, "do not add discovered Remmina profiles")
	noWatch := fs.Bool("no-watch", false, "do not rebuild the menu when the settings file changes")
	fs.BoolVar(&cfg.ControlEnabled, "control", cfg.ControlEnabled, "accept control requests from lbmenu ctl")
	fs.StringVar(&cfg.ControlAddr, "control-addr", cfg.ControlAddr, "loopback address of the control channel")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also append logs to this file")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}
	if *noProfiles {
		cfg.ProfilesEnabled = false
	}
	if *noWatch {
		cfg.Watch = false
	}
	return cfg, fs.Args(), nil
}

func handleCLI(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	command := "tray"
	if len(args) > 0 {
		command = normalizeCommand(args[0])
		args = args[1:]
	}

	switch command {
	case "tray":
		return runSession(ctx, cfg, tray.New(tray.Options{SettingsPath: cfg.SettingsPath()}))
	case "tui":
		return runSession(ctx, cfg, tui.New())
	case "list":
		return handleList(cfg, out)
	case "run":
		return handleRun(cfg, args, out)
	case "init":
		return handleInit(cfg, args, out)
	case "encrypt":
		return handleEncrypt(cfg, args, out)
	case "ctl":
		return handleCtl(ctx, cfg, args, out)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func normalizeCommand(arg string) string {
	trimmed := strings.TrimLeft(arg, "-/")
	return strings.ToLower(trimmed)
}

func newRunner(cfg config.Config) *menu.Runner {
	opts := menu.Options{
		Load:    cfg.LoadDocument,
		IconDir: cfg.IconDir(),
		Vars:    cfg.Vars(),
	}
	if cfg.ProfilesEnabled {
		opts.Sources = append(opts.Sources, profiles.Source(cfg.ProfileDir, profiles.Options{}))
	}
	if cfg.Watch {
		opts.WatchPath = cfg.SettingsPath()
	}
	return menu.NewRunner(opts)
}

func runSession(ctx context.Context, cfg config.Config, presenter menu.Presenter) error {
	if err := cfg.EnsureRoot(); err != nil {
		return err
	}
	runner := newRunner(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.ControlEnabled {
		srv, err := newControlServer(cfg, runner)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("control channel stopped: %v", err)
			}
		}()
	}

	logging.Debugf("starting session with settings root %s", cfg.SettingsRoot)
	if err := runner.Start(ctx, presenter); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("menu exited with error: %w", err)
	}
	return nil
}

// newControlServer writes a fresh token to the settings root for ctl to read.
func newControlServer(cfg config.Config, backend control.Backend) (*control.Server, error) {
	token, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := security.WriteTokenFile(cfg.TokenPath(), token); err != nil {
		return nil, err
	}
	return control.NewServer(ipc.New(cfg.ControlAddr), token, backend), nil
}

func handleList(cfg config.Config, out io.Writer) error {
	snap := newRunner(cfg).Refresh()
	if snap.Err != nil {
		fmt.Fprintf(out, "Settings error: %v\n", snap.Err)
	}
	printActions(out, snap.Actions.Actions())
	return nil
}

func printActions(out io.Writer, actions []dispatch.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(out, "No menu actions configured")
		return
	}
	fmt.Fprintf(out, "%-38s %-30s %s\n", "ID", "Path", "Command")
	for _, action := range actions {
		fmt.Fprintf(out, "%-38s %-30s %s\n", action.ID, truncate(action.Path, 30), action.String())
	}
}

func handleRun(cfg config.Config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("run requires exactly one action id or path")
	}
	runner := newRunner(cfg)
	snap := runner.Refresh()
	if snap.Err != nil {
		return snap.Err
	}
	action, ok := findAction(snap.Actions.Actions(), args[0])
	if !ok {
		return fmt.Errorf("%w: %s", dispatch.ErrUnknownAction, args[0])
	}
	if err := runner.Dispatch(action.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Launched %s\n", action.Path)
	return nil
}

// findAction matches an identifier first, then a menu path.
func findAction(actions []dispatch.Action, target string) (dispatch.Action, bool) {
	for _, action := range actions {
		if action.ID == target {
			return action, true
		}
	}
	for _, action := range actions {
		if action.Path == target {
			return action, true
		}
	}
	return dispatch.Action{}, false
}

func handleInit(cfg config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("init")
	format := fs.String("format", string(configtree.FormatXML), "settings format: xml, json, yaml, toml or hcl")
	force := fs.Bool("force", false, "overwrite an existing settings file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := configtree.Format(strings.ToLower(*format))
	data, err := configtree.Encode(menu.DefaultDocument(), f)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.SettingsRoot, "settings."+string(f))
	if cfg.SettingsFile != "" {
		path = cfg.SettingsPath()
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}
	if err := config.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func handleEncrypt(cfg config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("encrypt")
	in := fs.String("in", "", "plaintext settings file (default: the settings in effect)")
	dest := fs.String("out", filepath.Join(cfg.SettingsRoot, config.EncryptedFileName), "encrypted output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source := *in
	if source == "" {
		located, err := cfg.Locate()
		if err != nil {
			return err
		}
		source = located
	}
	if config.IsEncrypted(source) {
		return fmt.Errorf("%s is already encrypted", source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if _, err := configtree.Parse(data, configtree.SniffFormat(data)); err != nil {
		return err
	}

	secret, err := config.Secret()
	if err != nil {
		return err
	}
	if err := config.SaveEncrypted(*dest, data, secret); err != nil {
		return err
	}
	fmt.Fprintf(out, "Encrypted %s to %s\n", source, *dest)
	return nil
}

func handleCtl(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("ctl requires a command: list, refresh or dispatch <id>")
	}
	token, err := security.ReadTokenFile(cfg.TokenPath())
	if err != nil {
		return fmt.Errorf("is a launcher running with --control? %w", err)
	}
	client := control.Client{Endpoint: ipc.New(cfg.ControlAddr), Token: token}

	switch normalizeCommand(args[0]) {
	case "list":
		resp, err := client.List(ctx)
		if err != nil {
			return err
		}
		if resp.SettingsErr != "" {
			fmt.Fprintf(out, "Settings error: %s\n", resp.SettingsErr)
		}
		printActions(out, resp.Actions)
		return nil
	case "refresh":
		resp, err := client.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Menu rebuilt with %d actions (digest %s)\n", len(resp.Actions), truncate(resp.Digest, 12))
		return nil
	case "dispatch":
		if len(args) != 2 {
			return errors.New("ctl dispatch requires an action id")
		}
		if err := client.Dispatch(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Dispatched %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown ctl command: %s", args[0])
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	return fs
}
