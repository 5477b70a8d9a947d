package jobs

import (
	"context"
	"fmt"
	"time"

	"optideliver/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultReconcileSchedule runs reconciliation every five minutes.
const DefaultReconcileSchedule = "0 */5 * * * *"

type reconciler interface {
	Handle(ctx context.Context, cmd commands.ReconcileSlotCapacityCommand) (commands.ReconcileSlotCapacityResult, error)
}

// ReconciliationJob periodically compares slot availability with bound
// orders. It writes corrections only when apply is set; otherwise drift is
// logged and exported as a gauge.
type ReconciliationJob struct {
	handler  reconciler
	schedule string
	apply    bool
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewReconciliationJob(handler reconciler, schedule string, apply bool, logger *zap.Logger) *ReconciliationJob {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	logger = logger.With(zap.String("component", "reconciliation_job"))

	return &ReconciliationJob{
		handler:  handler,
		schedule: schedule,
		apply:    apply,
		timeout:  time.Minute,
		cron:     newCron(logger),
		logger:   logger,
	}
}

// Start schedules the job. It fails on an unparseable schedule.
func (j *ReconciliationJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("reconciliation job started",
		zap.String("schedule", j.schedule), zap.Bool("apply", j.apply))
	return nil
}

// Run performs one reconciliation pass.
func (j *ReconciliationJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	result, err := j.handler.Handle(ctx, commands.NewReconcileSlotCapacityCommand(j.apply))
	if err != nil {
		j.logger.Error("reconciliation failed", zap.Error(err))
		return
	}

	if result.Suspected+result.Confirmed+result.Fixed == 0 {
		j.logger.Debug("reconciliation found no drift")
		return
	}
	j.logger.Info("reconciliation pass finished",
		zap.Int("suspected", result.Suspected),
		zap.Int("confirmed", result.Confirmed),
		zap.Int("fixed", result.Fixed),
	)
}

// Stop unschedules the job and waits for a running pass to finish.
func (j *ReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("reconciliation job stopped")
}
