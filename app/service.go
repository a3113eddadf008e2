// Package app wires configuration, storage, metrics and the HTTP API into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apisim "github.com/kilianp07/chargesim/api/simulation"
	"github.com/kilianp07/chargesim/app/plugins"
	"github.com/kilianp07/chargesim/config"
	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/monitoring"
	"github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/core/store"
	"github.com/kilianp07/chargesim/infra/logger"
	"github.com/kilianp07/chargesim/infra/metrics"
	inframon "github.com/kilianp07/chargesim/infra/monitoring"
	_ "github.com/kilianp07/chargesim/infra/mqtt"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

// Service holds the long-lived components shared by the CLI commands.
type Service struct {
	Config *config.Config
	Store  store.Store
	Sink   coremetrics.MetricsSink
	Bus    *eventbus.Bus

	log       logger.Logger
	logCloser io.Closer
	collector <-chan struct{}
	stop      context.CancelFunc
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logCloser, err := logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	if cfg.Sentry.Enabled() {
		mon, err := inframon.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			logg.Warnf("sentry disabled: %v", err)
		} else {
			monitoring.Init(mon)
		}
	}

	st, err := plugins.NewStore(cfg.Store)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	return &Service{
		Config:    cfg,
		Store:     st,
		Sink:      sink,
		Bus:       eventbus.New(),
		log:       logg,
		logCloser: logCloser,
	}, nil
}

// SimulatorOptions returns the options every simulator built by the
// service should use.
func (s *Service) SimulatorOptions() []simulation.Option {
	return []simulation.Option{
		simulation.WithLogger(logger.New("simulation")),
		simulation.WithBus(s.Bus),
	}
}

// Start forwards bus events to the metrics sink until Close is called.
func (s *Service) Start(ctx context.Context) {
	if s.collector != nil {
		return
	}
	ctx, s.stop = context.WithCancel(ctx)
	s.collector = metrics.StartEventCollector(ctx, s.Bus, s.Sink, logger.New("collector"))
}

// Serve starts the collector, the Prometheus endpoint when a port is
// configured, and the HTTP API. It blocks until ctx is canceled.
func (s *Service) Serve(ctx context.Context) error {
	s.Start(ctx)

	if port := s.Config.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, promAddr(port), s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	handler := apisim.NewHandler(s.Store,
		apisim.WithDefaults(s.Config.Parameters),
		apisim.WithSimulatorOptions(s.SimulatorOptions()...),
		apisim.WithLogger(logger.New("api")),
	)
	apiCfg := s.Config.API
	srv := &http.Server{
		Addr:              apiCfg.Address,
		Handler:           apisim.NewRouter(handler, apiCfg.CORSOrigins),
		ReadHeaderTimeout: apiCfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer monitoring.Recover()
		s.log.Infof("api listening on %s", apiCfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), apiCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

// Close drains pending events into the sink and releases every resource.
func (s *Service) Close() error {
	s.Bus.Close()
	if s.collector != nil {
		<-s.collector
		s.stop()
	}
	var errs []error
	if c, ok := s.Sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.Store.Close())
	monitoring.Flush(2 * time.Second)
	errs = append(errs, s.logCloser.Close())
	return errors.Join(errs...)
}

func promAddr(port string) string {
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return ":" + port
}
