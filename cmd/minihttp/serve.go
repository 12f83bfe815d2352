package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dqx0.com/go/webserver/internal/config"
	"dqx0.com/go/webserver/internal/obs"
	"dqx0.com/go/webserver/internal/website"
	"dqx0.com/go/webserver/minihttp"
)

const metricsNamespace = "minihttp"

func newServeCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the website until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := load(c)
			if err != nil {
				return err
			}
			lg, err := newLogger(c, cfg)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				lg.E.WithError(err).Fatalf("cannot bind %s", cfg.Addr)
			}
			var mln net.Listener
			if cfg.MetricsAddr != "" {
				if mln, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
					lg.E.WithError(err).Fatalf("cannot bind metrics %s", cfg.MetricsAddr)
				}
			}
			return serve(c.Context(), cfg, lg, ln, mln)
		},
	}
	cmd.Flags().AddFlagSet(config.Flags())
	return cmd
}

func newLogger(c *cobra.Command, cfg *config.Config) (obs.LogrusLogger, error) {
	level, err := obs.ParseLevel(cfg.LogLevel)
	if err != nil {
		return obs.LogrusLogger{}, err
	}
	return obs.NewLogrusLogger(c.ErrOrStderr(), level, cfg.LogFormat == "json"), nil
}

// serve runs the website on ln, and the metrics endpoint on mln when it is
// not nil, until ctx is done or either server fails.
func serve(ctx context.Context, cfg *config.Config, lg obs.LogrusLogger, ln, mln net.Listener) error {
	s := minihttp.NewServer(cfg.Addr)
	s.BufferSize = cfg.BufferSize
	s.Concurrent = cfg.Concurrent
	s.AllowCRLF = cfg.AllowCRLF
	s.Logger = lg

	var msrv *http.Server
	if mln != nil {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "active_connections",
				Help:      "Connections currently being served.",
			}, func() float64 { return float64(s.Stats().Active) }),
		)
		s.Meter = obs.NewPromMeter(metricsNamespace, reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		msrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.E.WithFields(logrus.Fields{
			"addr":       ln.Addr().String(),
			"public":     cfg.PublicPath,
			"concurrent": cfg.Concurrent,
			"allow_crlf": cfg.AllowCRLF,
		}).Info("serving")
		err := s.Serve(ln, website.New(cfg.PublicPath))
		if errors.Is(err, minihttp.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	})
	if msrv != nil {
		g.Go(func() error {
			lg.Logf(obs.Info, "metrics on http://%s/metrics", mln.Addr())
			err := msrv.Serve(mln)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.Wrap(err, "metrics")
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		lg.Logf(obs.Info, "shutting down")
		err := s.Close()
		if msrv != nil {
			if merr := msrv.Close(); err == nil {
				err = merr
			}
		}
		return err
	})
	err := g.Wait()
	st := s.Stats()
	lg.E.WithFields(logrus.Fields{
		"accepted":     st.Accepted,
		"served":       st.Served,
		"bad_requests": st.BadRequests,
	}).Info("stopped")
	return err
}
