package jobs

import (
	"fmt"
)

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs    []namedJob
	started int
}

type namedJob struct {
	name string
	job  job
}

// NewJobManager creates a job manager for the reconciliation and expiry jobs.
func NewJobManager(reconciliation *ReconciliationJob, expiry *ExpiryJob) *JobManager {
	return &JobManager{jobs: []namedJob{
		{name: "reconciliation", job: reconciliation},
		{name: "expiry", job: expiry},
	}}
}

// StartAll starts all scheduled jobs.
// If one fails to start, the ones already started are stopped again.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			jm.stop(i)
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	jm.started = len(jm.jobs)
	return nil
}

// StopAll stops all scheduled jobs gracefully, in reverse start order.
func (jm *JobManager) StopAll() {
	jm.stop(jm.started)
	jm.started = 0
}

func (jm *JobManager) stop(started int) {
	for i := started - 1; i >= 0; i-- {
		jm.jobs[i].job.Stop()
	}
}
