// Package cmd is the paneledit command line: every panel editing component
// driven from files.
package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/paneledit/internal/cel"
	"github.com/oakwood-commons/paneledit/internal/config"
	"github.com/oakwood-commons/paneledit/internal/formatter"
	"github.com/oakwood-commons/paneledit/internal/limiter"
	"github.com/oakwood-commons/paneledit/pkg/loader"
	"github.com/oakwood-commons/paneledit/pkg/logger"
	"github.com/oakwood-commons/paneledit/pkg/settings"
)

// app is shared by the commands of one invocation.
type app struct {
	run   *settings.Run
	debug bool
	cfg   *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{run: settings.NewCliParams()}

	root := &cobra.Command{
		Use:           settings.CliBinaryName,
		Short:         "Edit panel queries, field config and options from the command line",
		Long:          longHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: "\n  paneledit filter --data data.yaml --ref A\n" +
			"  paneledit reconcile --queries queries.yaml --to loki --from prometheus\n" +
			"  paneledit rows --queries queries.yaml --op duplicate:A --op move:2:0 -o table\n" +
			"  paneledit search --options options.yaml --query unit -o tree\n",
		PersistentPreRunE: a.setup,
	}
	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().AddFlagSet(a.flags())

	root.AddCommand(
		newFilterCommand(a),
		newReconcileCommand(a),
		newSetCommand(a),
		newDefaultsCommand(a),
		newSearchCommand(a),
		newRowsCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVar(&a.run.ConfigFile, "config-file", "", "path to a YAML or TOML config file (data sources, variables, log level)")
	fs.StringVarP(&a.run.OutputFormat, "output", "o", a.run.OutputFormat, "output format: "+strings.Join(formatter.Formats, "|"))
	fs.StringVarP(&a.run.Expression, "expression", "e", "", "CEL expression over the output using '_' as root, e.g. '_.filter(r, r.hidden)'")
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&a.run.NoColor, "no-color", false, "disable color output")
	fs.IntVar(&a.run.Window.Limit, "limit", 0, "limit the number of records displayed")
	fs.IntVar(&a.run.Window.Offset, "offset", 0, "skip the first N records")
	fs.IntVar(&a.run.Window.Tail, "tail", 0, "show the last N records (mutually exclusive with --limit; ignores --offset)")
	return fs
}

// setup validates global flags, loads the configuration and attaches the
// logger and run settings to the command context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := formatter.ValidateFormat(a.run.OutputFormat); err != nil {
		return err
	}
	if err := a.window().Validate(); err != nil {
		return fmt.Errorf("record limiting: %w", err)
	}

	cfg, err := config.Load(a.run.ConfigFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := int8(-1)
	if !a.debug {
		if level, err = logger.ParseLevel(cfg.Log.Level); err != nil {
			return err
		}
	}
	a.run.MinLogLevel = level

	lgr := logger.Get(level).WithValues(logger.CommandKey, cmd.Name())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, &lgr)
	ctx = settings.IntoContext(ctx, a.run)
	cmd.SetContext(ctx)
	return nil
}

func (a *app) window() limiter.Config {
	return limiter.Config{Limit: a.run.Window.Limit, Offset: a.run.Window.Offset, Tail: a.run.Window.Tail}
}

func (a *app) log(cmd *cobra.Command) logr.Logger {
	return *logger.FromContext(cmd.Context())
}

// emit writes v through the output pipeline: normalisation, the optional
// expression, record limiting and the selected format.
func (a *app) emit(cmd *cobra.Command, v interface{}) error {
	return a.write(cmd, v, true)
}

func (a *app) write(cmd *cobra.Command, v interface{}, window bool) error {
	run := settings.FromContextOrDefault(cmd.Context())
	node, err := loader.Normalize(v)
	if err != nil {
		return fmt.Errorf("normalize output: %w", err)
	}
	if run.Expression != "" {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		if node, err = ev.Evaluate(run.Expression, node); err != nil {
			return fmt.Errorf("expression %q: %w", run.Expression, err)
		}
	}
	if window {
		node = a.window().Apply(node)
	}
	return formatter.Render(cmd.OutOrStdout(), node, formatter.Options{Format: run.OutputFormat, NoColor: run.NoColor})
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func longHelp() string {
	return `paneledit drives the query editing components of a dashboard panel.

Inputs are YAML, JSON, NDJSON or TOML files. Output goes through an
optional CEL expression (-e, root is '_') and record limiting before it is
rendered in the selected format.

Data sources come from the config file (--config-file). The mixed pseudo
data source is addressed as "mixed".`
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := settings.VersionInformation
			return a.emit(cmd, map[string]interface{}{
				"name":      settings.CliBinaryName,
				"version":   v.BuildVersion,
				"commit":    v.Commit,
				"buildTime": v.BuildTime,
				"goVersion": runtime.Version(),
			})
		},
	}
}
