package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo contains information about a scheduled job.
type JobInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	LastRun     time.Time  `json:"lastRun"`
	NextRun     time.Time  `json:"nextRun"`
	Schedule    string     `json:"schedule"`
	Enabled     bool       `json:"enabled"`
	RunCount    int        `json:"runCount"`
	ErrorCount  int        `json:"errorCount"`
	LastError   string     `json:"lastError,omitempty"`
	Singleton   bool       `json:"singleton"`
	GocronJob   gocron.Job `json:"-"` // Store gocron job reference, exclude from JSON
}

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler manages scheduled jobs.
type Scheduler struct {
	mu       sync.RWMutex
	gocron   gocron.Scheduler
	clock    clockwork.Clock
	jobs     map[string]*JobInfo
	jobFuncs map[string]JobFunc
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
}

type options struct {
	clock clockwork.Clock
}

// Option configures a Scheduler.
type Option func(*options)

// WithClock sets the clock used by the scheduler. Defaults to the real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New creates a new scheduler.
func New(opts ...Option) (*Scheduler, error) {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	gocronScheduler, err := gocron.NewScheduler(
		gocron.WithLogger(newLogger()),
		gocron.WithClock(o.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron:   gocronScheduler,
		clock:    o.clock,
		jobs:     make(map[string]*JobInfo),
		jobFuncs: make(map[string]JobFunc),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	log.Info("Starting job scheduler")
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true

	// after starting the scheduler, populate the next run times for all jobs
	for id, jobInfo := range s.jobs {
		s.refreshNextRun(id, jobInfo)
	}
	log.Info("Job scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() error {
	log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddJob adds a new job to the scheduler.
func (s *Scheduler) AddJob(
	id, name, description, definitionString string,
	jobDef gocron.JobDefinition,
	jobFunc JobFunc,
) error {
	return s.AddJobWithOptions(id, name, description, definitionString, jobDef, jobFunc, false)
}

// AddSingletonJob adds a new singleton job to the scheduler that can only run one instance at a time.
func (s *Scheduler) AddSingletonJob(
	id, name, description, definitionString string,
	jobDef gocron.JobDefinition,
	jobFunc JobFunc,
) error {
	return s.AddJobWithOptions(id, name, description, definitionString, jobDef, jobFunc, true)
}

// AddJobWithOptions adds a new job to the scheduler with optional singleton behavior.
// Adding a job with an id that is already registered is an error.
func (s *Scheduler) AddJobWithOptions(
	id, name, description, definitionString string,
	jobDef gocron.JobDefinition,
	jobFunc JobFunc,
	singleton bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already exists", id)
	}

	jobInfo := &JobInfo{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      JobStatusScheduled,
		Schedule:    definitionString,
		Enabled:     true,
		Singleton:   singleton,
	}

	jobOptions := []gocron.JobOption{gocron.WithName(id)}
	if singleton {
		// Use gocron's singleton mode with reschedule behavior
		jobOptions = append(jobOptions, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	}

	job, err := s.gocron.NewJob(jobDef, gocron.NewTask(s.wrapJobFunc(id, jobFunc)), jobOptions...)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}

	jobInfo.GocronJob = job
	s.jobFuncs[id] = jobFunc
	s.jobs[id] = jobInfo

	if s.started {
		s.refreshNextRun(id, jobInfo)
	}

	log.Info("Added job to scheduler", "id", id, "name", name, "singleton", singleton)
	return nil
}

// RemoveJob removes a job from the scheduler. Removing an unknown job is a no-op.
func (s *Scheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobInfo, exists := s.jobs[id]
	if !exists {
		return nil
	}

	delete(s.jobs, id)
	delete(s.jobFuncs, id)

	if jobInfo.GocronJob != nil {
		if err := s.gocron.RemoveJob(jobInfo.GocronJob.ID()); err != nil {
			return fmt.Errorf("failed to remove job %s: %w", id, err)
		}
	}

	log.Info("Removed job from scheduler", "id", id, "name", jobInfo.Name)
	return nil
}

// HasJob reports whether a job with the given id is registered.
func (s *Scheduler) HasJob(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.jobs[id]
	return exists
}

// RunJobNow manually triggers a job to run immediately.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.RLock()
	jobInfo, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	if jobInfo.GocronJob == nil {
		return fmt.Errorf("gocron job reference not found for job %s", id)
	}

	log.Info("Manually triggering job", "id", id, "name", jobInfo.Name)

	if err := jobInfo.GocronJob.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}

	return nil
}

// GetJobs returns a snapshot of all job information.
func (s *Scheduler) GetJobs() map[string]JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]JobInfo, len(s.jobs))
	for id, jobInfo := range s.jobs {
		jobs[id] = *jobInfo
	}
	return jobs
}

// GetJob returns a snapshot of a specific job.
func (s *Scheduler) GetJob(id string) (JobInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return JobInfo{}, false
	}
	return *job, true
}

// NextRun returns the next run time of a job.
// It is only known once the scheduler has been started.
func (s *Scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobInfo, exists := s.jobs[id]
	if !exists || !s.started || jobInfo.GocronJob == nil {
		return time.Time{}, false
	}
	nextRun, err := jobInfo.GocronJob.NextRun()
	if err != nil || nextRun.IsZero() {
		return time.Time{}, false
	}
	return nextRun, true
}

// EnableJob enables a job.
func (s *Scheduler) EnableJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobInfo, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	jobInfo.Enabled = true
	s.refreshNextRun(id, jobInfo)

	log.Info("Enabled job", "id", id, "name", jobInfo.Name)
	return nil
}

// DisableJob disables a job.
func (s *Scheduler) DisableJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobInfo, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	jobInfo.Enabled = false
	log.Info("Disabled job", "id", id, "name", jobInfo.Name)
	return nil
}

// refreshNextRun must be called with s.mu held.
func (s *Scheduler) refreshNextRun(id string, jobInfo *JobInfo) {
	if jobInfo.GocronJob == nil {
		log.Warn("Gocron job reference not found for job", "id", id)
		return
	}
	if nextRun, err := jobInfo.GocronJob.NextRun(); err == nil {
		jobInfo.NextRun = nextRun
		log.Debug("Next run time for job", "id", id, "nextRun", nextRun)
	}
}

// wrapJobFunc wraps a job function to update job statistics.
func (s *Scheduler) wrapJobFunc(id string, jobFunc JobFunc) func() {
	return func() {
		s.mu.Lock()
		jobInfo := s.jobs[id]
		if jobInfo == nil {
			s.mu.Unlock()
			log.Debug("Job was removed, skipping", "id", id)
			return
		}

		if !jobInfo.Enabled {
			s.mu.Unlock()
			log.Debug("Job is disabled, skipping", "id", id)
			return
		}

		log.Debug("Starting job", "id", id, "name", jobInfo.Name)
		jobInfo.Status = JobStatusRunning
		jobInfo.LastRun = s.clock.Now()
		s.refreshNextRun(id, jobInfo)
		jobInfo.RunCount++
		name := jobInfo.Name
		s.mu.Unlock()

		err := jobFunc(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			log.Error("Job failed", "id", id, "name", name, "error", err)
			jobInfo.Status = JobStatusFailed
			jobInfo.ErrorCount++
			jobInfo.LastError = err.Error()
		} else {
			log.Debug("Job completed successfully", "id", id, "name", name)
			jobInfo.Status = JobStatusCompleted
			jobInfo.LastError = ""
		}
	}
}
