// Package jobs provides registration, one-at-a-time execution and
// scheduling of background maintenance jobs.
package jobs

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/tracker"
	"github.com/spectrack/spectrack-go/internal/websocket"
)

// JobContext gives jobs access to the application's shared components.
type JobContext interface {
	Store() *store.Store
	Config() *config.Config
	WsHub() *websocket.Hub
	Tracker() *tracker.Service
}

// JobTask is the function executed when a job runs.
type JobTask func(ctx JobContext)

// ErrJobAlreadyRunning is returned when a job is triggered while a previous
// invocation is still in flight.
var ErrJobAlreadyRunning = errors.New("job is already running")

// JobStatus is the externally visible state of one registered job.
type JobStatus struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type job struct {
	id   string
	name string
	task JobTask
}

// Manager keeps the registry of background jobs and runs them.
type Manager struct {
	ctx JobContext

	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	running map[string]bool
	lastRun map[string]time.Time
	lastErr map[string]string
}

// NewManager creates an empty job manager.
func NewManager(ctx JobContext) *Manager {
	return &Manager{
		ctx:     ctx,
		jobs:    make(map[string]*job),
		running: make(map[string]bool),
		lastRun: make(map[string]time.Time),
		lastErr: make(map[string]string),
	}
}

// Register adds a job under a unique ID. Registering the same ID twice
// panics, since that is always a programming error.
func (m *Manager) Register(id, name string, task JobTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.jobs[id]; dup {
		panic(fmt.Sprintf("jobs: Register called twice for job %q", id))
	}
	m.jobs[id] = &job{id: id, name: name, task: task}
	m.order = append(m.order, id)
}

// RunJob triggers a job asynchronously. A job never overlaps itself; a
// trigger while it is still running returns ErrJobAlreadyRunning.
func (m *Manager) RunJob(id string) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("jobs: unknown job %q", id)
	}
	if m.running[id] {
		m.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	m.running[id] = true
	m.mu.Unlock()

	go func() {
		defer func() {
			var failure string
			if r := recover(); r != nil {
				failure = fmt.Sprintf("panic: %v", r)
				log.Printf("jobs: job %q panicked: %v", id, r)
			}
			m.mu.Lock()
			m.running[id] = false
			m.lastRun[id] = time.Now().UTC()
			m.lastErr[id] = failure
			m.mu.Unlock()
		}()
		log.Printf("jobs: running job %q", id)
		j.task(m.ctx)
	}()
	return nil
}

// IsRunning reports whether a job is currently executing.
func (m *Manager) IsRunning(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running[id]
}

// Statuses returns the state of every job in registration order.
func (m *Manager) Statuses() []JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make([]JobStatus, 0, len(m.order))
	for _, id := range m.order {
		j := m.jobs[id]
		status := JobStatus{
			ID:        j.id,
			Name:      j.name,
			Running:   m.running[id],
			LastError: m.lastErr[id],
		}
		if t, ok := m.lastRun[id]; ok {
			status.LastRun = &t
		}
		statuses = append(statuses, status)
	}
	return statuses
}
