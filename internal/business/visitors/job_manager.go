package visitors

import (
	"context"
	"sync"
)

// JobManager tracks cancel functions for running backfill jobs by run ID.
type JobManager struct {
	mu      sync.RWMutex
	cancels map[string]context.CancelFunc
}

func NewJobManager() *JobManager {
	return &JobManager{
		cancels: make(map[string]context.CancelFunc),
	}
}

// TryRegister stores cancel for runID unless another job is already running.
func (jm *JobManager) TryRegister(runID string, cancel context.CancelFunc) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if len(jm.cancels) > 0 {
		return false
	}
	jm.cancels[runID] = cancel
	return true
}

// Cancel invokes the cancel function for a job. Returns false when no such job runs.
func (jm *JobManager) Cancel(runID string) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if cancel, ok := jm.cancels[runID]; ok {
		cancel()
		delete(jm.cancels, runID)
		return true
	}
	return false
}

// Unregister removes a finished job.
func (jm *JobManager) Unregister(runID string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	delete(jm.cancels, runID)
}

func (jm *JobManager) IsRunning(runID string) bool {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	_, ok := jm.cancels[runID]
	return ok
}
