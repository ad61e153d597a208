package main

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/loader"
	"github.com/YuminosukeSato/linscore/pkg/log"
	"github.com/YuminosukeSato/linscore/registry"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	in          io.Reader
	out, errOut io.Writer

	configPath string
	maxSize    int64
	strict     bool
	dummy      bool
	logLevel   string
	timeout    time.Duration

	cfg      loader.Config
	loader   *loader.Loader
	registry *registry.Registry
	logger   log.Logger
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "linscore",
		Short: "Score linear models against sparse feature vectors",
		Long: `linscore loads linear and logistic model documents and applies them to
sparse feature vectors.

Models are given by path, http(s) URL, or by a name from the models section
of the configuration file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.Int64Var(&a.maxSize, "max-size", loader.DefaultMaxSize, "maximum model size in bytes")
	pf.BoolVar(&a.strict, "strict", false, "reject unknown model types")
	pf.BoolVar(&a.dummy, "dummy", false, "ignore the model and score with the dummy classifier")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.DurationVar(&a.timeout, "timeout", 0, "model load timeout (0 disables)")

	root.AddCommand(
		a.scoreCommand(),
		a.explainCommand(),
		a.inspectCommand(),
		a.evaluateCommand(),
	)
	return root
}

// setup merges the configuration file with the flags that were set
// explicitly and builds the loader and registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := loader.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = loader.LoadConfig(a.configPath); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max-size") || a.configPath == "" {
		cfg.MaxSize = a.maxSize
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if flags.Changed("dummy") {
		cfg.Dummy = a.dummy
	}
	if flags.Changed("timeout") {
		cfg.Timeout = loader.Duration(a.timeout)
	}
	if flags.Changed("log-level") || a.configPath == "" {
		cfg.LogLevel = a.logLevel
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetProvider(log.NewZerologProvider(a.errOut, level))
	a.logger = log.GetLoggerWithName("cli")

	l, err := loader.FromConfig(cfg)
	if err != nil {
		return err
	}
	reg, err := registry.New(l, cfg)
	if err != nil {
		return err
	}
	a.cfg, a.loader, a.registry = cfg, l, reg
	return nil
}

// load resolves ref as a configured model name, an http(s) URL or a file
// path, in that order.
func (a *app) load(ctx context.Context, ref string) (model.Classifier, error) {
	if _, ok := a.cfg.Models[ref]; ok {
		return a.registry.Get(ctx, ref)
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return a.loader.Load(ctx, loader.HTTPSource{URL: ref})
	}
	return a.loader.Load(ctx, loader.FileSource(ref))
}

// input opens path for reading; "-" is standard input.
func (a *app) input(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(a.in), nil
	}
	return openFile(path)
}
