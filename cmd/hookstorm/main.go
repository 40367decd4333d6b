// Package main is the hookstorm command line tool: it loads a workspace's
// hook configuration and fires events against it, the same code path the
// assistant host uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/hookstorm/internal/hook"
	"github.com/dshills/hookstorm/internal/host"
	"github.com/dshills/hookstorm/internal/registry"
	"github.com/dshills/hookstorm/internal/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	Workspace string
	TeamRoot  string
	LogLevel  string
	Team      bool
	Args      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	reg, err := registry.New(registry.Config{
		Workspace: opts.Workspace,
		TeamRoot:  opts.TeamRoot,
	}, registry.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load hooks: %v\n", err)
		return 1
	}
	defer reg.Close()

	cmd := "list"
	if len(opts.Args) > 0 {
		cmd = opts.Args[0]
	}

	switch cmd {
	case "list":
		return cmdList(reg)
	case "check":
		return cmdCheck(reg)
	case "message":
		return cmdMessage(reg, opts, logger)
	case "setup":
		return cmdSetup(reg, opts, logger)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		flag.Usage()
		return 1
	}
}

// cmdList prints the loaded hooks per kind plus any load failures.
func cmdList(reg *registry.Registry) int {
	for _, kind := range []hook.Kind{hook.KindMessage, hook.KindSetup} {
		units := reg.Resolve(kind)
		fmt.Printf("%s hooks (%d):\n", kind, len(units))
		for _, u := range units {
			fmt.Printf("  %s\n", u.Name())
		}
	}

	if errs := reg.LoadErrors(); len(errs) > 0 {
		fmt.Printf("load errors (%d):\n", len(errs))
		for _, le := range errs {
			fmt.Printf("  %s (%s): %v\n", le.Path, le.Kind, le.Err)
		}
	}
	return 0
}

// cmdCheck exits non-zero when any configured hook failed to load.
func cmdCheck(reg *registry.Registry) int {
	errs := reg.LoadErrors()
	if len(errs) == 0 {
		fmt.Printf("ok: %d hooks loaded\n", reg.Len())
		return 0
	}

	for _, le := range errs {
		fmt.Fprintf(os.Stderr, "Error: %v\n", le)
	}
	return 1
}

// cmdMessage fires the message event for the given content and prints the
// transformed result.
func cmdMessage(reg *registry.Registry, opts options, logger zerolog.Logger) int {
	content := strings.Join(opts.Args[1:], " ")
	if content == "" {
		fmt.Fprintf(os.Stderr, "Error: message requires content\n")
		return 1
	}

	sess := session.New(opts.Workspace)
	h := host.New(reg, host.WithLogger(logger))

	out, err := h.TransformMessage(context.Background(), sess, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(out)
	return 0
}

// cmdSetup fires the setup event for a fresh session and prints the merged
// state as JSON.
func cmdSetup(reg *registry.Registry, opts options, logger zerolog.Logger) int {
	sess := session.New(opts.Workspace)
	sess.IsTeam = opts.Team
	h := host.New(reg, host.WithLogger(logger))

	out, err := h.SetupSession(context.Background(), sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		SessionID string            `json:"sessionId"`
		Workspace string            `json:"workspace"`
		IsTeam    bool              `json:"isTeam"`
		CustomEnv map[string]string `json:"customEnv,omitempty"`
	}{out.ID, out.Workspace, out.IsTeam, out.CustomEnv}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.Workspace, "workspace", "", "Workspace directory")
	flag.StringVar(&opts.Workspace, "w", "", "Workspace directory (shorthand)")
	flag.StringVar(&opts.TeamRoot, "team-root", "", "Team configuration root (loaded before workspace)")
	flag.BoolVar(&opts.Team, "team", false, "Mark the session as a team session")
	flag.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Hookstorm - lifecycle hooks for AI coding assistants\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hookstorm [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list              List configured hooks\n")
		fmt.Fprintf(os.Stderr, "  check             Validate that all configured hooks load\n")
		fmt.Fprintf(os.Stderr, "  message <text>    Fire the message event and print the result\n")
		fmt.Fprintf(os.Stderr, "  setup             Fire the setup event and print the merged session\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hookstorm -w ./project list\n")
		fmt.Fprintf(os.Stderr, "  hookstorm -w ./project message \"fix the build\"\n")
		fmt.Fprintf(os.Stderr, "  hookstorm -w ./project -team setup\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Hookstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.Workspace == "" {
		if cwd, err := os.Getwd(); err == nil {
			opts.Workspace = cwd
		}
	}
	if abs, err := filepath.Abs(opts.Workspace); err == nil {
		opts.Workspace = abs
	}

	opts.Args = flag.Args()
	return opts
}
