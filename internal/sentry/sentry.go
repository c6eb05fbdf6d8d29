package sentry

import (
	"context"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/loopreach/loopreach/internal/config"
	"github.com/loopreach/loopreach/internal/logger"
	"go.uber.org/fx"
)

// Service manages the error reporting client lifecycle
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterHooks wires sentry initialization and flush into the application
// lifecycle
func RegisterHooks(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Start()
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func (s *Service) Start() error {
	if !s.cfg.Sentry.Enabled || s.cfg.Sentry.DSN == "" {
		s.logger.Debugw("sentry disabled")
		return nil
	}

	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              s.cfg.Sentry.DSN,
		Environment:      s.cfg.Sentry.Environment,
		TracesSampleRate: s.cfg.Sentry.SampleRate,
	})
	if err != nil {
		// Error reporting is best-effort; never block startup on it
		s.logger.Errorw("failed to initialize sentry", "error", err)
		return nil
	}

	s.logger.Infow("sentry initialized", "environment", s.cfg.Sentry.Environment)
	return nil
}

func (s *Service) Stop() {
	if s.cfg.Sentry.Enabled {
		sentrygo.Flush(2 * time.Second)
	}
}

// CaptureException forwards an error when reporting is enabled
func (s *Service) CaptureException(err error) {
	if s.cfg.Sentry.Enabled && err != nil {
		sentrygo.CaptureException(err)
	}
}
