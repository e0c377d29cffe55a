package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/config"
	"github.com/sudipbhatta12/political-app-sub000/internal/report"
)

// Service schedules automatic generation of daily reports
type Service struct {
	config    *config.Config
	generator *report.Generator
	cron      *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, generator *report.Generator) *Service {
	return &Service{
		config:    cfg,
		generator: generator,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start begins the nightly report generation. The previous day's report is
// generated shortly after midnight UTC so the date's post set is complete.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc("0 30 0 * * *", func() {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		logrus.Infof("Starting scheduled report generation for %s", yesterday.Format("2006-01-02"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := s.generator.Generate(ctx, yesterday); err != nil {
			var noData *report.NoDataError
			if errors.As(err, &noData) {
				logrus.Infof("Nothing to report for %s", yesterday.Format("2006-01-02"))
				return
			}
			logrus.Errorf("Scheduled report generation failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started: daily report generation at 00:30 UTC")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
