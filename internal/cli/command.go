// Package cli implements triagectl, a read-only terminal view of the triage
// working set.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a subcommand with its own flags.
type Command struct {
	Flags *flag.FlagSet

	// Usage is shown after "triagectl" in help, e.g. "show <id>".
	Usage string
	Short string

	// Exec runs after flags are parsed.
	Exec func(ctx context.Context, env *Env, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

func (c *Command) helpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

func (c *Command) printHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: triagectl [global flags]", c.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Short)
	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		fmt.Fprint(w, buf.String())
	}
}

// run parses the command flags and executes it. Returns the exit code.
func (c *Command) run(ctx context.Context, env *Env, args []string) int {
	c.Flags.SetOutput(io.Discard)

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.printHelp(env.Out)
			return 0
		}
		fmt.Fprintln(env.Err, "error:", err)
		fmt.Fprintln(env.Err)
		c.printHelp(env.Err)
		return 1
	}

	if err := c.Exec(ctx, env, c.Flags.Args()); err != nil {
		fmt.Fprintln(env.Err, "error:", err)
		return 1
	}
	return 0
}
