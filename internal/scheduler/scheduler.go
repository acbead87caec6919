package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ginger-beaver/OutlineBot/internal/metrics"
)

// Task is a unit of periodic work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Schedule binds a registered task to a cron spec with seconds precision,
// e.g. "0 0 9 * * *" for every day at 09:00:00.
type Schedule struct {
	TaskName string
	Spec     string
}

// Scheduler runs registered tasks on their schedules. A task that is still
// running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	tasks   map[string]Task
	log     *zap.Logger
	timeout time.Duration
	running sync.Map
}

// New creates a scheduler. timeout bounds a single task run.
func New(log *zap.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		tasks:   make(map[string]Task),
		log:     log,
		timeout: timeout,
	}
}

func (s *Scheduler) RegisterTask(task Task) {
	s.tasks[task.Name()] = task
}

// Start schedules every entry and starts the cron loop.
func (s *Scheduler) Start(schedules []Schedule) error {
	for _, schedule := range schedules {
		task, ok := s.tasks[schedule.TaskName]
		if !ok {
			return fmt.Errorf("task %s not registered", schedule.TaskName)
		}

		if _, err := s.cron.AddFunc(schedule.Spec, func() { s.run(task) }); err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", schedule.TaskName, err)
		}
		s.log.Info("scheduled task", zap.String("task", schedule.TaskName), zap.String("schedule", schedule.Spec))
	}

	s.cron.Start()
	s.log.Info("scheduler started")
	return nil
}

func (s *Scheduler) run(task Task) {
	name := task.Name()
	if _, running := s.running.LoadOrStore(name, true); running {
		metrics.TaskRunsTotal.WithLabelValues(name, metrics.ResultSkipped).Inc()
		s.log.Warn("task is already running, skipping this execution", zap.String("task", name))
		return
	}
	defer s.running.Delete(name)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Debug("starting task", zap.String("task", name))
	if err := task.Run(ctx); err != nil {
		metrics.TaskRunsTotal.WithLabelValues(name, metrics.ResultError).Inc()
		s.log.Error("task failed", zap.String("task", name), zap.Error(err))
		return
	}
	metrics.TaskRunsTotal.WithLabelValues(name, metrics.ResultOK).Inc()
	s.log.Info("task completed", zap.String("task", name), zap.Duration("took", time.Since(start)))
}

// Stop stops scheduling and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
