// Package keepalive pings the deployment's own public URL on a schedule so
// free-tier hosts do not idle the instance out.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/campusworks/workstudy/pkg/logger"
)

const (
	// Free-tier hosts idle instances after 15 minutes without traffic.
	defaultSchedule = "@every 14m"
	pingPath        = "/api/jobs/active"
)

// Config configures the keepalive pinger.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	Schedule string `yaml:"schedule"`
}

// Service periodically issues a GET against the active jobs endpoint.
// It implements the system service lifecycle.
type Service struct {
	cfg    Config
	client *http.Client
	cron   *cron.Cron
	log    *logger.Logger
}

// New constructs a keepalive service.
func New(cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("keepalive")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Name implements the system service interface.
func (s *Service) Name() string { return "keepalive" }

// Start schedules the ping. A disabled or unconfigured service starts as a
// no-op.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled || s.cfg.BaseURL == "" {
		s.log.Info("keepalive disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.ping); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.log.WithField("base_url", s.cfg.BaseURL).
		WithField("schedule", s.cfg.Schedule).
		Info("keepalive started")
	return nil
}

// Stop cancels the schedule and waits for an in-flight ping to finish.
func (s *Service) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Service) ping() {
	url := s.cfg.BaseURL + pingPath

	resp, err := s.client.Get(url)
	if err != nil {
		s.log.WithError(err).WithField("url", url).Warn("keepalive ping failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		s.log.WithField("url", url).
			WithField("status", resp.StatusCode).
			Warn("keepalive ping returned error status")
		return
	}
	s.log.WithField("url", url).WithField("status", resp.StatusCode).Debug("keepalive ping ok")
}
