// Package scheduler runs periodic background jobs keyed by tag. Scheduling a
// tag that already has a live job replaces it, so re-issuing a schedule (for
// example on every boot) never accumulates duplicate jobs.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// Task is one unit of scheduled work. A returned error is recorded and
// logged; the job simply runs again on its next tick.
type Task func(ctx context.Context) error

// Job statuses reported by Jobs.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	ErrNotStarted  = errors.New("scheduler not started")
	ErrUnknownTag  = errors.New("no job scheduled under tag")
	ErrTaskRunning = errors.New("job is already running")
)

// JobStatus is a snapshot of one scheduled job.
type JobStatus struct {
	Tag         string        `json:"tag"`
	Interval    time.Duration `json:"interval"`
	ScheduledAt time.Time     `json:"scheduledAt"`
	LastRunAt   *time.Time    `json:"lastRunAt,omitempty"`
	LastStatus  string        `json:"lastStatus"`
	LastError   string        `json:"lastError,omitempty"`
}

type job struct {
	tag      string
	interval time.Duration
	run      Task
	cancel   context.CancelFunc
	kick     chan struct{}

	mu          sync.Mutex
	running     bool
	scheduledAt time.Time
	lastRunAt   *time.Time
	lastStatus  string
	lastError   string
}

// Service owns the background jobs and their lifecycle.
type Service struct {
	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	jobs    map[string]*job
}

// NewService creates a stopped scheduler.
func NewService() *Service {
	return &Service{jobs: make(map[string]*job)}
}

// Start makes the scheduler accept jobs. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	log.Println("[scheduler] started")
}

// Stop cancels every job and waits for in-flight runs to finish, bounded by
// the given context.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] stopped (timeout)")
	}
}

// Schedule registers a periodic job under the tag, first cancelling any job
// already registered there. Calling it repeatedly with the same tag leaves
// exactly one live job. The first run fires one interval after scheduling;
// use RunNow for an immediate pass.
func (s *Service) Schedule(tag string, interval time.Duration, run Task) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	if existing, ok := s.jobs[tag]; ok {
		existing.cancel()
		delete(s.jobs, tag)
		log.Printf("[scheduler] replaced job %q", tag)
	}

	jctx, cancel := context.WithCancel(s.ctx)
	j := &job{
		tag:         tag,
		interval:    interval,
		run:         run,
		cancel:      cancel,
		kick:        make(chan struct{}, 1),
		scheduledAt: time.Now().UTC(),
		lastStatus:  StatusIdle,
	}
	s.jobs[tag] = j

	s.wg.Add(1)
	go s.loop(jctx, j)

	log.Printf("[scheduler] scheduled job %q every %s", tag, interval)
	return nil
}

// Cancel removes the job under the tag. Reports whether one existed.
func (s *Service) Cancel(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[tag]
	if !ok {
		return false
	}
	j.cancel()
	delete(s.jobs, tag)
	log.Printf("[scheduler] cancelled job %q", tag)
	return true
}

// RunNow triggers an immediate run of the job under the tag.
func (s *Service) RunNow(tag string) error {
	s.mu.Lock()
	j, ok := s.jobs[tag]
	s.mu.Unlock()

	if !ok {
		return ErrUnknownTag
	}

	j.mu.Lock()
	running := j.running
	j.mu.Unlock()
	if running {
		return ErrTaskRunning
	}

	select {
	case j.kick <- struct{}{}:
	default:
	}
	return nil
}

// Jobs returns a snapshot of every scheduled job, sorted by tag.
func (s *Service) Jobs() []JobStatus {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(jobs))
	for _, j := range jobs {
		statuses = append(statuses, j.status())
	}
	sort.Slice(statuses, func(i, k int) bool { return statuses[i].Tag < statuses[k].Tag })
	return statuses
}

// Running reports whether the job under the tag is mid-run.
func (s *Service) Running(tag string) bool {
	s.mu.Lock()
	j, ok := s.jobs[tag]
	s.mu.Unlock()
	if !ok {
		return false
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (s *Service) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.execute(ctx)
		case <-j.kick:
			j.execute(ctx)
		}
	}
}

func (j *job) execute(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	log.Printf("[scheduler] running job %q", j.tag)
	err := j.run(ctx)

	now := time.Now().UTC()
	j.mu.Lock()
	j.running = false
	j.lastRunAt = &now
	if err != nil {
		j.lastStatus = StatusError
		j.lastError = err.Error()
	} else {
		j.lastStatus = StatusSuccess
		j.lastError = ""
	}
	j.mu.Unlock()

	if err != nil {
		// Swallowed on purpose: the next tick is the retry.
		log.Printf("[scheduler] job %q failed: %v", j.tag, err)
	} else {
		log.Printf("[scheduler] job %q completed", j.tag)
	}
}

func (j *job) status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := JobStatus{
		Tag:         j.tag,
		Interval:    j.interval,
		ScheduledAt: j.scheduledAt,
		LastRunAt:   j.lastRunAt,
		LastStatus:  j.lastStatus,
		LastError:   j.lastError,
	}
	if j.running {
		status.LastStatus = StatusRunning
	}
	return status
}
