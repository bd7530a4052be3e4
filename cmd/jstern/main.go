package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/modoterra/jstern/internal/buildinfo"
	"github.com/modoterra/jstern/pkg/core"
	"github.com/modoterra/jstern/pkg/logging"
	"github.com/modoterra/jstern/pkg/pipeline"
	"github.com/modoterra/jstern/pkg/profile"
	"github.com/modoterra/jstern/pkg/providers/logs/filetail"
	"github.com/modoterra/jstern/pkg/providers/logs/journald"
	"github.com/modoterra/jstern/pkg/providers/stern"
	"github.com/modoterra/jstern/pkg/providers/systemd"
	"github.com/modoterra/jstern/pkg/query"
	"github.com/modoterra/jstern/pkg/render"
	"github.com/modoterra/jstern/pkg/shutdown"
	tuimodel "github.com/modoterra/jstern/pkg/tui/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds every flag value.
type options struct {
	namespace   string
	selector    string
	keys        []string
	filters     []string
	separator   bool
	padding     bool
	profileName string
	configPath  string
	color       string
	tui         bool

	sternBin    string
	kubeContext string
	since       string
	tail        int

	journalOutput string
	journalLines  int
	follow        bool
	fromEnd       bool

	logLevel   string
	logFormat  string
	logJournal bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "jstern <pod_query> [flags]",
		Short: "Filter and reshape JSON logs tailed from Kubernetes pods",
		Long: `jstern runs stern in raw mode and post-processes every line: JSON records are
matched against key=value filters and shown whole, as a subset of keys, or as a
single selected value. Lines that are not JSON are printed unchanged.

Examples:
  jstern web -n prod -f level=error
  jstern api -k time -k msg -k req.id --separator
  jstern api -s kubernetes.labels.app
  jstern --profile errors

A filter is a single key=value argument split at the first '=', so write
"-f level=error" where older versions took "-f level error".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.resolve(cmd)
			if err != nil {
				return report(cmd, err)
			}
			if len(args) > 0 {
				p.Query = args[0]
			}
			if p.SourceKind() == profile.SourceStern && p.Query == "" {
				return report(cmd, errors.New("pod query is required (see --help)"))
			}
			return report(cmd, opts.run(cmd, p))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.selector, "selector", "s", "", "print only the value at this dotted path")
	flags.StringSliceVarP(&opts.keys, "keys", "k", nil, "print only these dotted keys (repeatable, comma-separated)")
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "only show records where key=value, given as one argument: -f level=error, not -f level error (repeatable, all must match)")
	flags.BoolVar(&opts.separator, "separator", false, "print a separator line before each record")
	flags.BoolVar(&opts.padding, "padding", false, "print blank lines around each record")
	flags.StringVarP(&opts.profileName, "profile", "p", "", "load settings from a named profile")
	flags.StringVar(&opts.configPath, "config", "", "profile file (default ./jstern.yaml, then the user config dir)")
	flags.StringVar(&opts.color, "color", "auto", "colorize output: auto, always or never")
	flags.BoolVar(&opts.tui, "tui", false, "show records in an interactive viewer")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "diagnostic log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "diagnostic log format: text or json")
	flags.BoolVar(&opts.logJournal, "log-journal", false, "send diagnostics to the systemd journal when available")

	local := rootCmd.Flags()
	local.StringVarP(&opts.namespace, "namespace", "n", "", "Kubernetes namespace")
	local.StringVar(&opts.sternBin, "stern-bin", stern.DefaultBinary, "stern executable")
	local.StringVar(&opts.kubeContext, "context", "", "kubeconfig context")
	local.StringVar(&opts.since, "since", "", "only logs newer than a relative duration like 5s, 2m, or 3h")
	local.IntVar(&opts.tail, "tail", -1, "number of lines from the end of the logs to show (-1 for stern's default)")

	rootCmd.AddCommand(newJournalCmd(opts))
	rootCmd.AddCommand(newReplayCmd(opts))
	rootCmd.AddCommand(newProfileCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jstern %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}

// report prints err to stderr and passes it on for the exit code.
func report(cmd *cobra.Command, err error) error {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
	}
	return err
}

// resolve merges the selected profile with the flags that were set
// explicitly. Filters from flags are added to the profile's filters.
func (o *options) resolve(cmd *cobra.Command) (profile.Profile, error) {
	var p profile.Profile
	if o.profileName != "" {
		path, err := profile.Find(o.configPath)
		if err != nil {
			return p, err
		}
		if path == "" {
			return p, fmt.Errorf("profile %q requested but no %s found", o.profileName, profile.DefaultFileName)
		}
		f, err := profile.Load(path)
		if err != nil {
			return p, err
		}
		if p, err = f.Get(o.profileName); err != nil {
			return p, fmt.Errorf("%s: %w", path, err)
		}
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("namespace") {
		p.Namespace = o.namespace
	}
	if changed("context") {
		p.Context = o.kubeContext
	}
	if changed("since") {
		p.Since = o.since
	}
	if changed("tail") {
		tail := o.tail
		p.Tail = &tail
	}
	// A selector or key list from flags replaces the profile's projection.
	if changed("selector") || changed("keys") {
		p.Selector = o.selector
		p.Keys = o.keys
	}
	if changed("separator") {
		p.Separator = o.separator
	}
	if changed("padding") {
		p.Padding = o.padding
	}
	for _, expr := range o.filters {
		pred, err := query.ParsePredicate(expr)
		if err != nil {
			return p, err
		}
		p.Filters = append(p.Filters, profile.Filter{Key: pred.Path.String(), Value: pred.Value})
	}
	return p, nil
}

// run validates p, then launches the source and processes its output until
// it ends or an interrupt arrives.
func (o *options) run(cmd *cobra.Command, p profile.Profile) error {
	logger, err := logging.New(logging.Options{
		Level:   o.logLevel,
		Format:  o.logFormat,
		Journal: o.logJournal,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	mode, err := render.ParseColorMode(o.color)
	if err != nil {
		return err
	}

	cfg, err := pipelineConfig(p)
	if err != nil {
		return err
	}
	if o.tui && !render.IsTerminal(os.Stdout) {
		return errors.New("--tui needs a terminal on standard output")
	}
	launcher := o.launcher(p, logger)

	cancel := shutdown.NewCancellation()
	stop, err := shutdown.Register(cancel)
	if err != nil {
		return fmt.Errorf("register interrupt handler: %w", err)
	}
	defer stop()

	proc, err := launcher.Launch(context.Background())
	if err != nil {
		return fmt.Errorf("launch %s: %w", launcher.Name(), err)
	}

	if o.tui {
		return runViewer(p, cfg, proc, cancel, mode, logger)
	}

	out := cmd.OutOrStdout()
	hl := render.NewHighlighter(out, mode)
	printer := render.NewPrinter(out, hl, render.Options{Separator: p.Separator, Padding: p.Padding})
	pl := pipeline.New(cfg, hl, printer, logger)

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		pl.Run(proc.Stdout())
	}()

	return shutdown.NewCoordinator(cancel, logger).Run(proc, joined)
}

func runViewer(p profile.Profile, cfg pipeline.Config, proc core.Process, cancel *shutdown.Cancellation, mode render.ColorMode, logger *slog.Logger) error {
	prog := tea.NewProgram(tuimodel.New(sourceLabel(p), render.Options{Separator: p.Separator, Padding: p.Padding}), tea.WithAltScreen())
	sink := tuimodel.NewSink(prog)
	pl := pipeline.New(cfg, render.NewHighlighter(os.Stdout, mode), sink, logger)

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		sink.End(pl.Run(proc.Stdout()))
	}()

	uiErr := make(chan error, 1)
	go func() {
		_, err := prog.Run()
		cancel.Fire()
		uiErr <- err
	}()

	co := shutdown.NewCoordinator(cancel, logger)
	co.SetStopOnStreamEnd(false)
	err := co.Run(proc, joined)
	prog.Quit()
	return errors.Join(err, <-uiErr)
}

// pipelineConfig validates p and builds the per-record configuration.
func pipelineConfig(p profile.Profile) (pipeline.Config, error) {
	f := &profile.File{Version: 1, Profiles: map[string]profile.Profile{"flags": p}}
	if errs := profile.Validate(f); len(errs) > 0 {
		return pipeline.Config{}, errors.Join(errs...)
	}
	preds, err := p.Predicates()
	if err != nil {
		return pipeline.Config{}, err
	}
	proj, err := p.Projection()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{Predicates: preds, Projection: proj}, nil
}

func (o *options) launcher(p profile.Profile, logger *slog.Logger) core.Launcher {
	switch p.SourceKind() {
	case profile.SourceJournald:
		return journald.New(journald.Options{Unit: p.Unit, Output: p.Output, Lines: o.journalLines, Check: systemd.Lookup}, logger)
	case profile.SourceFile:
		return filetail.New(filetail.Options{Path: p.File, Follow: p.Follow, FromEnd: o.fromEnd}, logger)
	default:
		tail := -1
		if p.Tail != nil {
			tail = *p.Tail
		}
		return stern.New(stern.Options{
			Binary:    o.sternBin,
			Query:     p.Query,
			Namespace: p.Namespace,
			Context:   p.Context,
			Since:     p.Since,
			Tail:      tail,
			Extra:     p.Args,
		}, logger)
	}
}

func sourceLabel(p profile.Profile) string {
	switch p.SourceKind() {
	case profile.SourceJournald:
		return "unit " + p.Unit
	case profile.SourceFile:
		return p.File
	default:
		if p.Namespace != "" {
			return p.Query + " -n " + p.Namespace
		}
		return p.Query
	}
}
