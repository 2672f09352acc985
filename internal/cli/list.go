package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// ListCmd prints the filtered, grouped ticket list.
func ListCmd() *Command {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	query := fs.StringP("query", "q", "", "free-text search")
	month := fs.String("month", domain.Defaults.Wildcard, "month key YYYY-MM")
	categories := fs.StringSlice("category", nil, "categories to include (repeatable; default all)")
	routing := fs.String("routing", domain.Defaults.Wildcard, "routing filter")
	status := fs.String("status", domain.Defaults.Wildcard, "status filter")
	sort := fs.String("sort", string(domain.SortDateDesc), "sort order")
	axis := fs.String("axis", "", "axis to show first")

	return &Command{
		Flags: fs,
		Usage: "list [flags]",
		Short: "List tickets grouped by axis",
		Exec: func(ctx context.Context, env *Env, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("list takes no arguments, got %q", args[0])
			}

			sortKey := domain.SortKey(*sort)
			patch := domain.FilterPatch{
				Query:   query,
				Month:   month,
				Routing: routing,
				Status:  status,
				Sort:    &sortKey,
			}
			if fs.Changed("category") {
				patch.Categories = *categories
			}
			if fs.Changed("axis") {
				patch.ActiveAxis = axis
			}

			list, err := env.Session.List(ctx, &patch)
			if err != nil {
				return err
			}
			return printList(env, list)
		},
	}
}

func printList(env *Env, list domain.TicketList) error {
	if env.Format == formatJSON {
		view := listView{Count: list.Count, Sections: make([]sectionView, 0, len(list.Sections))}
		for _, s := range list.Sections {
			sv := sectionView{Axis: s.Axis, Tickets: make([]ticketView, 0, len(s.Tickets))}
			for _, t := range s.Tickets {
				sv.Tickets = append(sv.Tickets, toTicketView(t))
			}
			view.Sections = append(view.Sections, sv)
		}
		return env.writeJSON(view)
	}

	for _, s := range list.Sections {
		if len(s.Tickets) == 0 {
			continue
		}
		name := s.Axis
		if name == "" {
			name = "(no axis)"
		}
		fmt.Fprintf(env.Out, "%s (%d)\n", name, len(s.Tickets))

		tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
		for _, t := range s.Tickets {
			fmt.Fprintf(tw, "  #%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Date, t.Status, t.Routing, t.DisplayCategory, t.Subject)
		}
		tw.Flush()
		fmt.Fprintln(env.Out)
	}
	fmt.Fprintf(env.Out, "%d ticket(s)\n", list.Count)
	return nil
}
