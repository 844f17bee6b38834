package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/incidents"
	"github.com/campusworks/incident-desk/internal/pkg/metrics"
)

// CheckerConfig contains overdue checker configuration.
type CheckerConfig struct {
	PollInterval time.Duration
}

// DefaultCheckerConfig returns default checker configuration.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		PollInterval: 5 * time.Minute,
	}
}

// OverdueSource lists incidents whose estimated resolution date has passed
// while they are still active.
type OverdueSource interface {
	ListOverdueIncidents(ctx context.Context, now time.Time) ([]*domain.Incident, error)
}

// OverdueChecker periodically scans for overdue incidents, updates the
// overdue gauge and notifies about each one.
type OverdueChecker struct {
	config   CheckerConfig
	source   OverdueSource
	notifier incidents.Notifier

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewOverdueChecker creates a new overdue checker.
func NewOverdueChecker(config CheckerConfig, source OverdueSource, notifier incidents.Notifier) *OverdueChecker {
	return &OverdueChecker{
		config:   config,
		source:   source,
		notifier: notifier,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the checker goroutine.
func (c *OverdueChecker) Start(ctx context.Context) {
	slog.Info("starting overdue checker", "poll_interval", c.config.PollInterval)

	c.wg.Add(1)
	go c.run(ctx)
}

// Stop gracefully stops the checker.
func (c *OverdueChecker) Stop() {
	close(c.stopCh)
	c.wg.Wait()
	slog.Info("overdue checker stopped")
}

func (c *OverdueChecker) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	// First scan right away so the gauge is populated at startup.
	c.check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *OverdueChecker) check(ctx context.Context) {
	overdue, err := c.source.ListOverdueIncidents(ctx, time.Now())
	if err != nil {
		slog.Error("failed to list overdue incidents", "error", err)
		return
	}

	metrics.OverdueIncidents.Set(float64(len(overdue)))

	if len(overdue) == 0 {
		return
	}

	slog.Debug("overdue incidents found", "count", len(overdue))

	for _, incident := range overdue {
		if err := c.notifier.NotifyOverdue(ctx, incident); err != nil {
			slog.Error("failed to notify overdue incident",
				"incident_id", incident.ID,
				"error", err,
			)
		}
	}
}
