package jobs

import (
	"context"
	"fmt"
	"time"

	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultExpireSchedule deactivates ended slots at the start of every hour.
const DefaultExpireSchedule = "0 0 * * * *"

type expirer interface {
	Handle(ctx context.Context, cmd commands.ExpireSlotsCommand) (int64, error)
}

// ExpiryJob deactivates slots whose window has ended so they no longer show
// up as bookable.
type ExpiryJob struct {
	handler  expirer
	schedule string
	clock    kernel.Clock
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewExpiryJob(handler expirer, schedule string, clock kernel.Clock, logger *zap.Logger) *ExpiryJob {
	if schedule == "" {
		schedule = DefaultExpireSchedule
	}
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	logger = logger.With(zap.String("component", "expiry_job"))

	return &ExpiryJob{
		handler:  handler,
		schedule: schedule,
		clock:    clock,
		timeout:  time.Minute,
		cron:     newCron(logger),
		logger:   logger,
	}
}

func (j *ExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("expiry job started", zap.String("schedule", j.schedule))
	return nil
}

// Run deactivates every slot that ended before now.
func (j *ExpiryJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewExpireSlotsCommand(j.clock.Now())
	if err != nil {
		j.logger.Error("build expire command", zap.Error(err))
		return
	}

	n, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("slot expiry failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("slots expired", zap.Int64("count", n))
	}
}

func (j *ExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("expiry job stopped")
}
