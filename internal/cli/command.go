package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/aanand-mishra/academic-records/internal/utils/response"
)

// IO bundles the writers a command prints to. Results go to Out as JSON;
// errors go to Err.
type IO struct {
	Out io.Writer
	Err io.Writer
}

// Println writes a line to Out.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.Out, a...)
}

// Result writes data to Out inside the ok envelope.
func (o *IO) Result(data any) error {
	return response.WriteJSON(o.Out, response.OK(data))
}

// Fail writes err to Err inside the error envelope.
func (o *IO) Fail(err error) {
	_ = response.WriteJSON(o.Err, response.GeneralError(err))
}

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags.
	Flags *flag.FlagSet

	// Usage is shown after "records" in help. It starts with the command
	// name (one or two words) followed by arguments, e.g. "grade delete <id>".
	Usage string

	// Short is a one-line description for the global help listing.
	Short string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name: the leading words of Usage up to the
// first argument or flag placeholder.
func (c *Command) Name() string {
	var words []string
	for _, w := range strings.Fields(c.Usage) {
		if strings.ContainsAny(w[:1], "<[-") {
			break
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help output for "records <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: records", c.Usage)
	o.Println()
	o.Println(c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		_, _ = fmt.Fprint(o.Out, buf.String())
	}
}

// Run parses flags and executes the command. Returns the exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.Fail(err)
		return 2
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.Fail(err)
		return 1
	}

	return 0
}
