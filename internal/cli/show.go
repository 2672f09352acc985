package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// ShowCmd prints one ticket with its conversation.
func ShowCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show a ticket and its thread",
		Exec: func(ctx context.Context, env *Env, args []string) error {
			if len(args) != 1 {
				return errors.New("show requires exactly one ticket id")
			}

			detail, err := env.Session.Ticket(ctx, domain.TicketID(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}

			if env.Format == formatJSON {
				return env.writeJSON(detailView{
					Ticket: toTicketView(detail.Ticket),
					Thread: detail.Thread,
				})
			}

			v := toTicketView(detail.Ticket)
			fmt.Fprintf(env.Out, "#%s  %s\n", v.ID, v.Subject)
			fmt.Fprintf(env.Out, "From:       %s\n", v.Sender)
			fmt.Fprintf(env.Out, "Axis:       %s\n", v.Axis)
			fmt.Fprintf(env.Out, "Date:       %s\n", v.Date)
			fmt.Fprintf(env.Out, "Categories: %s\n", v.DisplayCategory)
			fmt.Fprintf(env.Out, "Routing:    %s (%d%%)\n", v.Routing, v.ConfidencePercent)
			fmt.Fprintf(env.Out, "Status:     %s\n", v.Status)
			if v.Note != "" {
				fmt.Fprintf(env.Out, "\nNote:\n%s\n", v.Note)
			}

			for _, m := range detail.Thread {
				arrow := "<"
				if m.Direction == domain.DirectionOutbound {
					arrow = ">"
				}
				fmt.Fprintf(env.Out, "\n%s %s  %s\n%s\n", arrow, m.From, m.Date, m.Body)
			}
			return nil
		},
	}
}
