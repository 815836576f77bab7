package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrJobRunning  = errors.New("a job is already running")
	ErrJobNotFound = errors.New("job not found")
)

// Task is the body of a job. It should return promptly once ctx is cancelled.
type Task func(ctx context.Context, arg any) error

type JobStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "idle", "running", "stopped", "success", "failed"
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Manager runs at most one job at a time. It is the single owner of the
// busy flag and of the cancel function of the running job.
type Manager struct {
	mu      sync.Mutex
	jobs    map[string]Task
	status  map[string]*JobStatus
	order   []string
	running bool
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		jobs:   make(map[string]Task),
		status: make(map[string]*JobStatus),
	}
}

func (jm *Manager) Register(id, name string, task Task) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if _, ok := jm.jobs[id]; !ok {
		jm.order = append(jm.order, id)
	}
	jm.jobs[id] = task
	jm.status[id] = &JobStatus{ID: id, Name: name, Status: "idle"}
}

// RunJob starts a registered job in the background. It returns
// ErrJobRunning when any job is already running.
func (jm *Manager) RunJob(id string, arg any) error {
	jm.mu.Lock()
	if jm.running {
		jm.mu.Unlock()
		return ErrJobRunning
	}
	task, ok := jm.jobs[id]
	if !ok {
		jm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	jm.running = true
	jm.current = id
	jm.cancel = cancel
	jm.done = done
	status := jm.status[id]
	status.Status = "running"
	status.StartTime = time.Now()
	status.EndTime = time.Time{}
	status.Message = "Job started..."
	jm.mu.Unlock()

	log.Info().Str("job", id).Msg("Starting job")
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("job", id).Interface("panic", r).Msg("Job panicked")
				err = fmt.Errorf("job panicked: %v", r)
			}

			jm.mu.Lock()
			status.EndTime = time.Now()
			switch {
			case err == nil:
				status.Status = "success"
				status.Message = "Job completed successfully."
			case errors.Is(err, context.Canceled):
				status.Status = "stopped"
				status.Message = "Job stopped."
			default:
				status.Status = "failed"
				status.Message = err.Error()
			}
			final := status.Status
			jm.running = false
			jm.current = ""
			jm.cancel = nil
			jm.done = nil
			jm.mu.Unlock()

			cancel()
			close(done)
			log.Info().Str("job", id).Str("status", final).Msg("Finished job")
		}()

		err = task(ctx, arg)
	}()
	return nil
}

// StopJob cancels the running job and reports whether there was one. The
// job stops at its next checkpoint.
func (jm *Manager) StopJob() bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	if !jm.running || jm.cancel == nil {
		return false
	}
	log.Info().Str("job", jm.current).Msg("Stopping job")
	jm.cancel()
	return true
}

// Wait blocks until no job is running.
func (jm *Manager) Wait() {
	jm.mu.Lock()
	done := jm.done
	jm.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (jm *Manager) IsRunning() bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	return jm.running
}

// GetStatus returns a snapshot of every job in registration order.
func (jm *Manager) GetStatus() []*JobStatus {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	statuses := make([]*JobStatus, 0, len(jm.order))
	for _, id := range jm.order {
		s := *jm.status[id]
		statuses = append(statuses, &s)
	}
	return statuses
}
