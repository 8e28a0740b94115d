package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	cron "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"urly/internal/models"
	"urly/internal/notifier"
	"urly/internal/registry"
	"urly/internal/scraper"
)

// Notifier delivers an alert to a webhook
type Notifier interface {
	Send(ctx context.Context, webhookURL string, a notifier.Alert) error
}

// PollError reports that the availability of a subscription could not be fetched
type PollError struct {
	ID  string
	Err error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll of subscription %s failed: %v", e.ID, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// Result is the outcome of checking one subscription
type Result struct {
	Subscription models.Subscription // State after the check, as persisted
	Vacancies    int
	Notified     bool
	NotifyErr    error // Set when a notification was due but could not be sent
}

// CycleReport summarizes one poll cycle
type CycleReport struct {
	Checked  int
	Notified int
	Failed   int
}

// Monitor runs the periodic vacancy checks
type Monitor struct {
	registry *registry.Registry
	scrapers *scraper.Registry
	notifier Notifier
	now      func() time.Time
}

// New creates a monitor
func New(reg *registry.Registry, scrapers *scraper.Registry, n Notifier) *Monitor {
	return &Monitor{
		registry: reg,
		scrapers: scrapers,
		notifier: n,
		now:      time.Now,
	}
}

// Start runs a poll cycle immediately and then on every tick of schedule, a
// cron expression such as "*/10 * * * *" or "@every 10m". It blocks until ctx is
// done. An empty schedule disables polling.
func (m *Monitor) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		log.Info("Poll schedule is empty, in-process polling disabled")
		return nil
	}

	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(schedule, func() { m.RunCycle(ctx) }); err != nil {
		return errors.Wrapf(err, "invalid poll schedule %q", schedule)
	}

	log.Infof("Monitor started, polling on schedule %q", schedule)

	m.RunCycle(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	log.Info("Monitor stopped")
	return nil
}

// RunCycle checks every stored subscription in turn. A failing subscription
// is logged and never aborts the cycle.
func (m *Monitor) RunCycle(ctx context.Context) CycleReport {
	var report CycleReport

	subs, err := m.registry.ListAll(ctx)
	if err != nil {
		log.Errorf("Failed to list subscriptions: %v", err)
		return report
	}

	log.Infof("Running vacancy check for %d subscription(s)", len(subs))

	for _, sub := range subs {
		if ctx.Err() != nil {
			log.Warn("Poll cycle interrupted")
			break
		}

		result, err := m.CheckSubscription(ctx, sub)
		if err != nil {
			report.Failed++
			log.WithField("id", sub.ID).Errorf("Error checking subscription: %v", err)
			continue
		}

		report.Checked++
		if result.Notified {
			report.Notified++
		}
	}

	log.Infof("Vacancy check done: %d checked, %d notified, %d failed", report.Checked, report.Notified, report.Failed)
	return report
}

// CheckSubscription polls one subscription, notifies when the vacancy count
// reaches its threshold and persists the updated timestamps. A failed poll
// leaves the stored record untouched.
func (m *Monitor) CheckSubscription(ctx context.Context, sub models.Subscription) (*Result, error) {
	s := m.scrapers.FindScraper(sub.PropertyURL)
	if s == nil {
		return nil, &PollError{ID: sub.ID, Err: errors.Errorf("no scraper found for URL: %s", sub.PropertyURL)}
	}

	availability, err := s.GetAvailability(ctx, sub.Shisya, sub.Danchi)
	if err != nil {
		return nil, &PollError{ID: sub.ID, Err: err}
	}

	vacancies := availability.Vacancies()
	checked := m.now()
	sub.LastChecked = &checked
	sub.LastCount = &vacancies

	result := &Result{Vacancies: vacancies}

	if vacancies >= sub.Threshold {
		err := m.notifier.Send(ctx, sub.SlackWebhookURL, notifier.NewAlert(&sub, vacancies))
		if err != nil {
			result.NotifyErr = err
			log.WithField("id", sub.ID).Errorf("Failed to send notification: %v", err)
		} else {
			notified := m.now()
			sub.LastNotified = &notified
			result.Notified = true
			log.WithField("id", sub.ID).Infof("Notification sent (%d vacancies)", vacancies)
		}
	}

	result.Subscription = sub

	if err := m.registry.Put(ctx, &sub); err != nil {
		return result, err
	}
	return result, nil
}
