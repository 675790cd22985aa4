// Command slogeval drives an annotation session from the terminal.
//
// Usage:
//
//	slogeval --config study.yaml next --user annotator-7
//	slogeval --config study.yaml submit --user annotator-7 --phase quant \
//	    --item source_a/17 --field Cardiomegaly=1 --field Edema=0 ...
//	slogeval --config study.yaml progress --user annotator-7
//	slogeval --config study.yaml partition --user annotator-7
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	slogeval "github.com/Debodeep94/SLOG-Eval"
	"github.com/Debodeep94/SLOG-Eval/source"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath  string
	verbose     bool
	metricsAddr string
	timeout     time.Duration

	logger  slogeval.Logger
	coord   *slogeval.Coordinator
	closers []func() error
	server  *http.Server
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one invocation and always releases what setup acquired.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	return errors.Join(err, a.teardown(ctx))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "slogeval",
		Short: "Two-phase radiology report annotation coordinator",
		Long: `slogeval assigns each annotator a deterministic quantitative pool and a small
qualitative pool of paired reports, and resumes from persisted progress.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "slogeval.yaml", "study configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newNextCmd(a),
		newSubmitCmd(a),
		newProgressCmd(a),
		newPartitionCmd(a),
	)

	return root
}

func (a *app) setup(ctx context.Context, stderr io.Writer) error {
	a.logger = slogeval.NewTextLogger(stderr, a.verbose)

	fc, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := slogeval.NewPrometheusMetrics(reg, "")
	if a.metricsAddr != "" {
		a.serveMetrics(reg)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	store, closeStore, err := openStore(ctx, fc.Store, a.logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeStore)

	coord, err := slogeval.NewCoordinator(&fc.Coordinator, source.NewCSV(fc.Items...), store,
		slogeval.WithLogger(a.logger),
		slogeval.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	if err := coord.Start(ctx); err != nil {
		return err
	}
	a.coord = coord

	return nil
}

func (a *app) teardown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	if a.coord != nil {
		errs = append(errs, a.coord.Stop(ctx))
		a.coord = nil
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
		a.server = nil
	}

	return errors.Join(errs...)
}

func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	a.server = &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", a.metricsAddr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", a.metricsAddr)
}

// commandContext bounds a subcommand by --timeout.
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
