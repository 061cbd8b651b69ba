// main is the entry point of the records command.
//
// It only wires the process to the outside world: environment, standard
// streams, signals and the exit code. Everything else, including the
// one-time schema initialisation, happens in cli.Run.
//
// RUNNING:
//
//	go run ./cmd/records --config=config/local.yaml student list
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/records teacher-login -u admin -p admin
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aanand-mishra/academic-records/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	// Ctrl+C / SIGTERM cancel the context, which aborts any in-flight query.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, os.Stdout, os.Stderr, os.Args, env)

	stop()
	os.Exit(code)
}
