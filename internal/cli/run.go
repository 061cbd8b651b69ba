// Package cli is the command-line front end. It is the only caller of the
// record store: it bootstraps the store once per invocation and then runs
// a single command against it.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/aanand-mishra/academic-records/internal/config"
	"github.com/aanand-mishra/academic-records/internal/storage"
	"github.com/aanand-mishra/academic-records/internal/storage/sqlite"
)

// Run is the whole program: parse global flags, load config, open and
// initialise the store, then dispatch to one command. Returns the exit code.
//
// env is consulted for CONFIG_PATH only. The settings themselves (ENV,
// STORAGE_PATH, BUSY_TIMEOUT) are read from the process environment by
// config.Load.
//
// STARTUP SEQUENCE:
//  1. Load configuration (--config flag, else CONFIG_PATH, else env only)
//  2. Initialise the logger
//  3. Open the SQLite file and make sure the schema exists
//  4. Run the requested command
func Run(ctx context.Context, stdout, stderr io.Writer, args []string, env map[string]string) int {
	o := &IO{Out: stdout, Err: stderr}

	global := flag.NewFlagSet("records", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "Path to the configuration YAML file")
	help := global.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:] // program name
	}
	if err := global.Parse(args); err != nil {
		o.Fail(err)
		return 2
	}

	rest := global.Args()
	if *help || len(rest) == 0 {
		printUsage(o, commands(nil))
		if *help {
			return 0
		}
		return 2
	}

	// ── 1. Load Config ────────────────────────────────────────────────────
	path := *configPath
	if path == "" {
		path = env["CONFIG_PATH"]
	}

	cfg, err := config.Load(path)
	if err != nil {
		o.Fail(err)
		return 1
	}

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Logs go to stderr so stdout carries nothing but command results.
	log := setupLogger(cfg.Env, stderr)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to open storage", slog.String("error", err.Error()))
		o.Fail(err)
		return 1
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		o.Fail(err)
		return 1
	}

	log.Debug("storage initialised", slog.String("path", cfg.StoragePath))

	// ── 4. Dispatch ───────────────────────────────────────────────────────
	cmds := commands(store)

	cmd, cmdArgs := lookup(cmds, rest)
	if cmd == nil {
		o.Fail(errors.New("unknown command: " + strings.Join(rest, " ")))
		printUsage(&IO{Out: stderr, Err: stderr}, cmds)
		return 2
	}

	return cmd.Run(ctx, o, cmdArgs)
}

// lookup finds the command whose name matches the leading words of args,
// preferring two-word names ("student add") over one-word ones.
func lookup(cmds []*Command, args []string) (*Command, []string) {
	for _, n := range []int{2, 1} {
		if len(args) < n {
			continue
		}
		name := strings.Join(args[:n], " ")
		for _, c := range cmds {
			if c.Name() == name {
				return c, args[n:]
			}
		}
	}
	return nil, nil
}

func printUsage(o *IO, cmds []*Command) {
	o.Println("Usage: records [--config <file>] <command> [args]")
	o.Println()
	o.Println("Commands:")
	for _, c := range cmds {
		o.Println(c.HelpLine())
	}
}

// commands lists every command. store may be nil when only help text is
// needed; Exec is never called in that case.
func commands(store storage.Storage) []*Command {
	return []*Command{
		cmdTeacherLogin(store),
		cmdStudentLogin(store),
		cmdStudentAdd(store),
		cmdStudentUpdate(store),
		cmdStudentDelete(store),
		cmdStudentShow(store),
		cmdStudentGet(store),
		cmdStudentList(store),
		cmdGradeAdd(store),
		cmdGradeList(store),
		cmdGradeDelete(store),
		cmdAttendanceAdd(store),
		cmdAttendanceList(store),
		cmdAttendanceDelete(store),
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
