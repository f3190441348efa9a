// Package keepalive periodically requests the service's own public URL so
// hosting platforms that idle inactive instances keep it running.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const requestTimeout = 10 * time.Second

// Pinger issues GET requests to a fixed URL on a schedule.
type Pinger struct {
	url    string
	client *http.Client
	log    *slog.Logger
	sched  gocron.Scheduler
}

// New returns a Pinger for url. It does nothing until Start.
func New(url string, logger *slog.Logger) *Pinger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pinger{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		log:    logger.With("component", "keepalive"),
	}
}

// Ping performs one request and returns the response status code.
func (p *Pinger) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Start pings immediately and then every interval until Stop.
func (p *Pinger) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("keepalive interval must be positive, got %v", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(p.run),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}
	p.sched = s
	s.Start()
	p.log.Info("keep-alive enabled", "url", p.url, "interval", interval.String())
	return nil
}

func (p *Pinger) run() {
	status, err := p.Ping(context.Background())
	if err != nil {
		p.log.Error("keep-alive ping failed", "error", err)
		return
	}
	p.log.Info("keep-alive ping", "status", status)
}

// Stop shuts the schedule down, waiting for a running ping to finish.
func (p *Pinger) Stop() error {
	if p.sched == nil {
		return nil
	}
	return p.sched.Shutdown()
}
