package cmd

import (
	"context"
	"time"

	httpin "optideliver/internal/adapters/in/http"
	"optideliver/internal/adapters/out/advisor"
	"optideliver/internal/adapters/out/mongoaudit"
	"optideliver/internal/adapters/out/postgres"
	"optideliver/internal/core/application/admission"
	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/application/usecases/queries"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/ports"
	"optideliver/internal/jobs"
	"optideliver/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsNamespace = "optideliver"

// Adapters are the optional outbound dependencies. A nil field disables the
// feature it backs.
type Adapters struct {
	Events ports.SlotEventRecorder
	Cache  ports.RankingCache
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      kernel.Clock
	loc        *time.Location
	logger     *zap.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	events   ports.SlotEventRecorder
	cache    ports.RankingCache

	admission  *admission.Controller
	advisor    *advisor.Client
	reconciler *commands.ReconcileSlotCapacityCommandHandler
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, adapters Adapters, logger *zap.Logger) CompositionRoot {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metricsNamespace, registry)

	events := adapters.Events
	if events == nil {
		events = mongoaudit.NoopRecorder{}
	}

	clock := kernel.SystemClock{}
	loc := cfg.Location()
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	root := CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: uowFactory,
		clock:      clock,
		loc:        loc,
		logger:     logger,
		registry:   registry,
		metrics:    m,
		events:     events,
		cache:      adapters.Cache,
		admission:  admission.NewController(uowFactory.SlotRepository(), events, m, clock, logger),
		advisor:    advisor.NewClient(cfg.AdvisorURL, cfg.AdvisorTimeout, loc, m, logger),
	}
	root.reconciler = commands.NewReconcileSlotCapacityCommandHandler(
		root.commandUoWFactory(), events, m, clock, cfg.ReconcileGrace, logger)

	return root
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	factory := c.uowFactory
	return commands.UoWFactoryFunc(func() commands.UoW {
		return factory.Create()
	})
}

// HTTPHandlers wires every use case the HTTP adapter dispatches to.
func (c *CompositionRoot) HTTPHandlers() httpin.Handlers {
	f := c.commandUoWFactory()
	findAvailable := queries.NewFindAvailableSlotsQueryHandler(c.gormDB, c.loc, c.clock)

	return httpin.Handlers{
		CreateSlot:       commands.NewCreateSlotCommandHandler(f),
		UpdateSlot:       commands.NewUpdateSlotCommandHandler(f, c.logger),
		AdjustCapacity:   commands.NewAdjustSlotCapacityCommandHandler(c.admission, f, c.logger),
		AssignCarrier:    commands.NewAssignCarrierCommandHandler(f),
		DeleteSlot:       commands.NewDeleteSlotCommandHandler(f, c.logger),
		CreateOrder:      commands.NewCreateOrderCommandHandler(c.admission, f, c.logger),
		BookSlot:         commands.NewBookSlotForOrderCommandHandler(c.admission, f, c.logger),
		UnbindSlot:       commands.NewUnbindSlotForOrderCommandHandler(c.admission, f, c.logger),
		CancelOrder:      commands.NewCancelOrderCommandHandler(c.admission, f, c.logger),
		DeleteOrder:      commands.NewDeleteOrderCommandHandler(c.admission, f, c.logger),
		RecordPreference: commands.NewRecordSlotPreferenceCommandHandler(c.advisor, f, c.clock, c.logger),

		FindAvailable: findAvailable,
		RankSlots: queries.NewRankSlotsQueryHandler(
			findAvailable, c.advisor, c.cache, c.cfg.RankingCacheTTL, c.clock, c.loc, c.logger),
		GetSlot:   queries.NewGetSlotQueryHandler(c.gormDB, c.loc),
		ListSlots: queries.NewListSlotsQueryHandler(c.gormDB, c.loc),
		GetOrder:  queries.NewGetOrderQueryHandler(c.gormDB, c.loc),
	}
}

// NewEcho builds the HTTP surface with a database health check.
func (c *CompositionRoot) NewEcho(ctx context.Context) (*echo.Echo, error) {
	return httpin.NewEcho(ctx, httpin.NewServer(c.HTTPHandlers(), c.loc), httpin.Options{
		Logger:        c.logger,
		Metrics:       c.metrics,
		Gatherer:      c.registry,
		Authenticator: httpin.NewAuthenticator(c.cfg.JWTSecret),
		BookingRate:   c.cfg.RateLimitRPS,
		BookingBurst:  c.cfg.RateLimitBurst,
		Health:        c.pingDatabase,
	})
}

func (c *CompositionRoot) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// NewJobManager wires the background jobs. The reconciliation handler is
// shared so its observations survive between runs.
func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	expire := commands.NewExpireSlotsCommandHandler(c.commandUoWFactory(), c.metrics, c.logger)

	return jobs.NewJobManager(
		jobs.NewReconciliationJob(c.reconciler, c.cfg.ReconcileSchedule, c.cfg.ReconcileApply, c.logger),
		jobs.NewExpiryJob(expire, c.cfg.ExpireSchedule, c.clock, c.logger),
	)
}
