package cli

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

const metricsShutdownTimeout = 5 * time.Second

func newRunCommand(a *app) *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run spreadsheet commands from a file or stdin",
		Long: `Run one command per line against a fresh sheet.

Commands:
  set <cell> <text>     define a cell from text or a formula
  clear <cell>          empty a cell
  get <cell>            print the value of a cell
  text <cell>           print the text of a cell
  refs <cell>           print the cells a formula reads
  size                  print the printable area as rowsxcols
  print values|texts    print the printable area, tab separated

Blank lines and lines starting with '#' are ignored. Reads stdin when
file is omitted or '-'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "failed to open %s", args[0])
				}
				defer f.Close()
				in = f
			}
			return a.run(cmd.Context(), in, cmd.OutOrStdout(), failFast)
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing command")
	return cmd
}

func (a *app) run(ctx context.Context, in io.Reader, out io.Writer, failFast bool) error {
	parser, err := spreadsheet.NewParser(a.cfg.Sheet.FormulaCacheSize)
	if err != nil {
		return err
	}
	opts := []spreadsheet.Option{
		spreadsheet.WithParser(parser),
		spreadsheet.WithLogger(a.log),
	}

	if a.cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		opts = append(opts, spreadsheet.WithMetrics(spreadsheet.NewMetrics(registry)))

		stop, err := serveMetrics(a.cfg.Metrics.Addr, registry, a.log)
		if err != nil {
			return err
		}
		defer stop(ctx)
	}

	a.log.WithField("cache_size", a.cfg.Sheet.FormulaCacheSize).Debug("session started")
	return NewSession(out, opts...).Run(in, failFast)
}

// serveMetrics exposes registry on addr until the returned stop is called
func serveMetrics(addr string, registry *prometheus.Registry, log logrus.FieldLogger) (func(context.Context), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	log.WithField("addr", listener.Addr().String()).Info("serving metrics")

	return func(ctx context.Context) {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("metrics server shutdown")
		}
	}, nil
}
