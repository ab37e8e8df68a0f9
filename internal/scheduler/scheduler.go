package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"clubcorra/internal/notify"
	"clubcorra/internal/service"
)

const (
	PurgeSpec        = "@every 1h"
	StaleSweepSpec   = "@every 6h"
	ReceiptSweepSpec = "@daily"
	OTPRetention     = 24 * time.Hour // Dead codes are kept this long for audits
	StalePendingAge  = 48 * time.Hour
	OrphanReceiptAge = 24 * time.Hour // Uploads not attached to a request by then are removed
	jobTimeout       = 2 * time.Minute
)

// Scheduler runs the periodic housekeeping jobs
type Scheduler struct {
	cron     *cron.Cron
	otp      service.OTPService
	coins    service.CoinService
	receipts service.ReceiptService
	pub      notify.Publisher
	now      func() time.Time
}

// New registers the jobs; nothing runs until Start
func New(otp service.OTPService, coins service.CoinService, receipts service.ReceiptService, pub notify.Publisher) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		otp:      otp,
		coins:    coins,
		receipts: receipts,
		pub:      pub,
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(PurgeSpec, func() { s.run("otp_purge", s.PurgeOTPs) }); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(StaleSweepSpec, func() { s.run("stale_sweep", s.SweepStale) }); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(ReceiptSweepSpec, func() { s.run("receipt_purge", s.PurgeReceipts) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")
}

// Stop prevents new runs and waits for running jobs or ctx, whichever is first
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run(job string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := s.now()
	if err := fn(ctx); err != nil {
		logrus.WithFields(logrus.Fields{"job": job, "error": err.Error()}).Error("Scheduled job failed")
		return
	}
	logrus.WithFields(logrus.Fields{"job": job, "took": s.now().Sub(start).String()}).Debug("Scheduled job done")
}

// PurgeOTPs deletes codes that expired or were consumed before the retention window
func (s *Scheduler) PurgeOTPs(ctx context.Context) error {
	n, err := s.otp.Purge(ctx, s.now().Add(-OTPRetention))
	if err != nil {
		return err
	}
	if n > 0 {
		logrus.WithField("deleted", n).Info("Purged old OTPs")
	}
	return nil
}

// SweepStale warns about reward requests left pending too long and nudges dashboards
func (s *Scheduler) SweepStale(ctx context.Context) error {
	n, err := s.coins.CountStalePending(ctx, s.now().Add(-StalePendingAge))
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	logrus.WithFields(logrus.Fields{"count": n, "older_than": StalePendingAge.String()}).Warn("Reward requests waiting for review")
	notify.PublishQuietly(ctx, s.pub, notify.Event{Type: notify.EventTransactionsStale, Count: n})
	return nil
}

// PurgeReceipts removes uploaded receipts that never made it into a request
func (s *Scheduler) PurgeReceipts(ctx context.Context) error {
	_, err := s.receipts.PurgeOrphans(ctx, s.now().Add(-OrphanReceiptAge))
	return err
}
