// Package service runs the health and metrics endpoints of the op-suite runner.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-suite/metrics"
)

type Config struct {
	HealthzAddr    string
	MetricsEnabled bool
	MetricsAddr    string
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	cfg Config
}

func New(cfg Config) *Service {
	s := &Service{
		Healthz: &HealthzServer{},
		cfg:     cfg,
	}
	if cfg.MetricsEnabled {
		s.Metrics = &MetricsServer{}
	}
	return s
}

// Start binds the configured addresses and serves them in the background.
// An empty healthz address disables the health endpoint.
func (s *Service) Start(ctx context.Context) error {
	log.Info("service starting")

	if s.cfg.HealthzAddr != "" {
		if err := s.Healthz.Listen(s.cfg.HealthzAddr); err != nil {
			return err
		}
		log.Info("starting healthz server", "addr", s.Healthz.Addr())
		go func() {
			if err := s.Healthz.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error serving healthz", "err", err)
				metrics.RecordErrorDetails("healthz", err)
			}
		}()
	}

	if s.Metrics != nil {
		if err := s.Metrics.Listen(s.cfg.MetricsAddr); err != nil {
			return errors.Join(err, s.Healthz.Shutdown(ctx))
		}
		log.Info("starting metrics server", "addr", s.Metrics.Addr())
		go func() {
			if err := s.Metrics.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error serving metrics", "err", err)
				metrics.RecordErrorDetails("metrics", err)
			}
		}()
	}

	log.Info("service started")
	return nil
}

func (s *Service) Shutdown(ctx context.Context) error {
	log.Info("service shutting down")

	var errs error
	if err := s.Healthz.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}
	log.Info("healthz stopped")

	if s.Metrics != nil {
		if err := s.Metrics.Shutdown(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
		log.Info("metrics stopped")
	}

	log.Info("service stopped")
	return errs
}
