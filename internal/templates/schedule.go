package templates

import (
	"context"
	"fmt"

	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler rescans known post types on a cron schedule. It covers theme
// roots on filesystems that do not deliver change notifications.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

// NewScheduler parses a standard 5-field spec (minute hour dom month dow).
func NewScheduler(ctx context.Context, locator *Locator, spec string, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() {
		log.Debug("Scheduled template rescan")
		locator.Rescan(ctx)
	}); err != nil {
		return nil, fmt.Errorf("parse rescan schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Template rescan schedule started")
}

// Stop waits for a running rescan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
