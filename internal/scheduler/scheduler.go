package scheduler

import (
	"context"
	"runtime/debug"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type taskFn func(ctx context.Context) error

// Scheduler runs background jobs on cron expressions. The engine itself is
// request-driven; this adapter just invokes the exposed operations on a
// timetable and is off unless enabled in config.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func New(logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	_ = s.scheduler.Shutdown()
}

// NewCrontabJob registers fn on a five-field crontab expression. Singleton
// mode: a run still in flight when the next trigger fires reschedules the
// trigger instead of stacking runs.
func (s *Scheduler) NewCrontabJob(name, crontab string, fn taskFn) error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(s.taskWithRecover(name, fn)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (s *Scheduler) taskWithRecover(name string, fn taskFn) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered in scheduler job",
					zap.String("job", name),
					zap.Any("panic", r),
					zap.String("stacktrace", string(debug.Stack())))
			}
		}()

		s.logger.Info("job start", zap.String("job", name))

		if err := fn(ctx); err != nil {
			s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}

		s.logger.Info("job completed", zap.String("job", name))
	}
}
