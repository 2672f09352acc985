package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// SummaryCmd prints the dashboard of the whole collection.
func SummaryCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("summary", flag.ContinueOnError),
		Usage: "summary",
		Short: "Show ticket totals and histograms",
		Exec:  execSummary,
	}
}

func execSummary(ctx context.Context, env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("summary takes no arguments, got %q", args[0])
	}

	d := env.Session.Dashboard(ctx)
	if env.Format == formatJSON {
		return env.writeJSON(summaryView{
			Total:         d.Total,
			Solved:        d.Solved,
			Open:          d.Open,
			SolvedPercent: d.SolvedPercent,
			OpenPercent:   d.OpenPercent,
			ByCategory:    toCountViews(d.ByCategory),
			ByRouting:     toCountViews(d.ByRouting),
			ByMonth:       toCountViews(d.ByMonth),
		})
	}

	fmt.Fprintf(env.Out, "Tickets: %d  Solved: %d (%d%%)  Open: %d (%d%%)\n",
		d.Total, d.Solved, d.SolvedPercent, d.Open, d.OpenPercent)
	printCounts(env, "By category", d.ByCategory)
	printCounts(env, "By routing", d.ByRouting)
	printCounts(env, "By month", d.ByMonth)
	return nil
}

func printCounts(env *Env, title string, counts []domain.Count) {
	fmt.Fprintf(env.Out, "\n%s:\n", title)
	if len(counts) == 0 {
		fmt.Fprintln(env.Out, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Label, c.Count)
	}
	tw.Flush()
}
