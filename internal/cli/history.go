package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

var errHistoryUnavailable = errors.New("history requires --database-url")

type historyView struct {
	RecordedAt time.Time `json:"recordedAt"`
	Deleted    bool      `json:"deleted"`
	Value      string    `json:"value,omitempty"`
}

// HistoryCmd lists recorded writes of the override record.
func HistoryCmd() *Command {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.IntP("limit", "n", 20, "maximum entries to show")

	return &Command{
		Flags: fs,
		Usage: "history [flags]",
		Short: "Show recent override writes (PostgreSQL store only)",
		Exec: func(ctx context.Context, env *Env, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("history takes no arguments, got %q", args[0])
			}
			if env.history == nil {
				return errHistoryUnavailable
			}
			if *limit <= 0 {
				return errors.New("--limit must be positive")
			}

			entries, err := env.history.History(ctx, env.storeKey, *limit)
			if err != nil {
				return err
			}

			views := make([]historyView, 0, len(entries))
			for _, e := range entries {
				v := historyView{RecordedAt: e.RecordedAt, Deleted: e.Value == nil}
				if e.Value != nil {
					v.Value = *e.Value
				}
				views = append(views, v)
			}

			if env.Format == formatJSON {
				return env.writeJSON(views)
			}
			for _, v := range views {
				if v.Deleted {
					fmt.Fprintf(env.Out, "%s  deleted\n", v.RecordedAt.Format(time.RFC3339))
					continue
				}
				fmt.Fprintf(env.Out, "%s  %d bytes\n", v.RecordedAt.Format(time.RFC3339), len(v.Value))
			}
			return nil
		},
	}
}
