package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/lorrc/triage-desk/internal/adapters/secondary/feed"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/postgres"
	"github.com/lorrc/triage-desk/internal/adapters/secondary/store"
	"github.com/lorrc/triage-desk/internal/config"
	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/lorrc/triage-desk/internal/core/services"
	"github.com/lorrc/triage-desk/internal/infrastructure/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var errUnknownFormat = errors.New("format must be text or json")

// Env is what a command runs against: an already loaded session plus the
// output streams.
type Env struct {
	Out     io.Writer
	Err     io.Writer
	Format  string
	Session ports.TriageService

	// history is set when overrides live in PostgreSQL.
	history  *postgres.OverrideStorage
	storeKey string
}

func (e *Env) writeJSON(v any) error {
	enc := json.NewEncoder(e.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type globalFlags struct {
	feedPath    string
	feedURL     string
	timeout     time.Duration
	storeDir    string
	databaseURL string
	storeKey    string
	taxonomy    string
	format      string
	verbose     bool
}

func commands() []*Command {
	return []*Command{SummaryCmd(), ListCmd(), ShowCmd(), HistoryCmd()}
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: triagectl [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintln(w, c.helpLine())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	global.SetOutput(w)
	global.PrintDefaults()
}

// Run executes triagectl with args (without the program name) and returns
// the exit code.
func Run(ctx context.Context, out, errOut io.Writer, args []string) int {
	var g globalFlags
	global := flag.NewFlagSet("triagectl", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	global.StringVar(&g.feedPath, "feed", "data/tickets.json", "ticket feed file (JSON or JSONC)")
	global.StringVar(&g.feedURL, "feed-url", "", "ticket feed URL, used instead of --feed")
	global.DurationVar(&g.timeout, "timeout", 10*time.Second, "feed fetch timeout")
	global.StringVar(&g.storeDir, "store-dir", "", "override store directory (default: no stored overrides)")
	global.StringVar(&g.databaseURL, "database-url", "", "read overrides from PostgreSQL instead of --store-dir")
	global.StringVar(&g.storeKey, "store-key", domain.Defaults.StorageKey, "override storage key")
	global.StringVar(&g.taxonomy, "taxonomy", "", "taxonomy YAML file")
	global.StringVarP(&g.format, "format", "o", formatText, "output format: text or json")
	global.BoolVarP(&g.verbose, "verbose", "v", false, "log diagnostics to stderr")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, global)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(out, global)
		return 0
	}

	var cmd *Command
	for _, c := range commands() {
		if c.Name() == rest[0] {
			cmd = c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(errOut, "error: unknown command %q\n\n", rest[0])
		printUsage(errOut, global)
		return 1
	}

	if g.format != formatText && g.format != formatJSON {
		fmt.Fprintln(errOut, "error:", errUnknownFormat)
		return 1
	}

	env, closeEnv, err := openEnv(ctx, g, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer closeEnv()

	return cmd.run(ctx, env, rest[1:])
}

// openEnv loads the working set once for the command.
func openEnv(ctx context.Context, g globalFlags, out, errOut io.Writer) (*Env, func(), error) {
	level := "error"
	if g.verbose {
		level = "debug"
	}
	logger := logging.NewLogger(logging.Config{
		Level:       level,
		Format:      formatText,
		Output:      errOut,
		ServiceName: "triagectl",
	})

	taxonomy, err := config.LoadTaxonomy(g.taxonomy)
	if err != nil {
		return nil, nil, err
	}

	storeCfg := config.StoreConfig{Driver: config.StoreMemory, Key: g.storeKey}
	switch {
	case g.databaseURL != "":
		storeCfg.Driver = config.StorePostgres
		storeCfg.DatabaseURL = g.databaseURL
		storeCfg.MaxOpenConns = 2
		storeCfg.ConnMaxLifetime = time.Hour
		storeCfg.ConnMaxIdleTime = time.Minute
	case g.storeDir != "":
		storeCfg.Driver = config.StoreFile
		storeCfg.Dir = g.storeDir
	}
	opened, err := store.Open(ctx, storeCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	session := services.NewTriageService(feed.New(g.feedPath, g.feedURL, g.timeout), opened.Storage, nil, services.TriageConfig{
		Taxonomy:   taxonomy,
		StorageKey: g.storeKey,
	}, logger)

	loadCtx, cancel := context.WithTimeout(ctx, g.timeout+5*time.Second)
	defer cancel()
	if err := session.Load(loadCtx); err != nil {
		opened.Close()
		return nil, nil, err
	}

	return &Env{
		Out:      out,
		Err:      errOut,
		Format:   g.format,
		Session:  session,
		history:  opened.Postgres,
		storeKey: g.storeKey,
	}, opened.Close, nil
}
