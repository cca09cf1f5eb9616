package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

// Reconciler repairs drifted favorite counters
type Reconciler interface {
	ReconcileFavoriteCounts(ctx context.Context) (*service.ReconcileReport, error)
}

// Scheduler runs periodic maintenance inside the API process
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New creates a scheduler evaluating specs in loc
func New(loc *time.Location, log *logrus.Logger) *Scheduler {
	cronLog := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		log: log,
	}
}

// cronLogger sends cron's own messages to logrus, routine ones at debug level
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(cronFields(keysAndValues)).Debugf("cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(cronFields(keysAndValues)).WithError(err).Errorf("cron: %s", msg)
}

func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// ScheduleReconcile registers favorite count reconciliation under a cron spec
func (s *Scheduler) ScheduleReconcile(spec string, r Reconciler) error {
	_, err := s.cron.AddFunc(spec, func() { s.runReconcile(r) })
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	s.log.Infof("Favorite count reconciliation scheduled: %s", spec)
	return nil
}

func (s *Scheduler) runReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := r.ReconcileFavoriteCounts(ctx)
	if err != nil {
		s.log.Errorf("Favorite count reconciliation failed: %v", err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"topics_scanned":   report.TopicsScanned,
		"topics_corrected": report.TopicsCorrected,
	}).Info("Favorite count reconciliation finished")
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
