// Package jobs provides scheduled background tasks for the slot service.
//
// Jobs are built on github.com/robfig/cron/v3 with seconds precision. Runs of
// the same job never overlap and a panicking run is recovered and logged.
//
// # Available Jobs
//
// 1. ReconciliationJob - compares each quiet slot's availability with the
// number of orders bound to it and repairs leaked reservations
// 2. ExpiryJob - deactivates slots whose delivery window has ended
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewReconciliationJob(reconcileHandler, cfg.ReconcileSchedule, cfg.ReconcileApply, logger),
//		jobs.NewExpiryJob(expireHandler, cfg.ExpireSchedule, clock, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and the next run proceeds as scheduled. The
// reconciliation handler keeps state between runs, so the same handler
// instance must be passed for the lifetime of the process.
package jobs
