package jobs

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/spectrack/spectrack-go/internal/tracker"
)

// tempFileMaxAge is how long downloaded artifacts may linger in the temp
// directory before cleanup removes them.
const tempFileMaxAge = 24 * time.Hour

// RegisterAll registers the built-in maintenance jobs.
func RegisterAll(m *Manager) {
	m.Register("subscription-check", "Re-track subscribed specs", runSubscriptionCheck)
	m.Register("session-cleanup", "Delete expired sessions", runSessionCleanup)
	m.Register("temp-cleanup", "Delete stale temp files", runTempCleanup)
}

// StartScheduler launches the periodic job schedule. The returned scheduler
// should be stopped on shutdown.
func StartScheduler(ctx JobContext, m *Manager) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	interval := ctx.Config().Subscriptions.CheckIntervalHours
	if interval < 1 {
		interval = 6
	}
	s.Every(interval).Hours().Do(func() { triggerJob(m, "subscription-check") })
	s.Every(1).Hour().Do(func() { triggerJob(m, "session-cleanup") })
	s.Every(6).Hours().Do(func() { triggerJob(m, "temp-cleanup") })

	s.StartAsync()
	return s
}

func triggerJob(m *Manager, id string) {
	if err := m.RunJob(id); err != nil && !errors.Is(err, ErrJobAlreadyRunning) {
		log.Printf("jobs: failed to trigger %q: %v", id, err)
	}
}

// runSubscriptionCheck re-runs the tracker for every subscribed spec, one at
// a time. A manual run in progress postpones the whole check to the next
// scheduled slot.
func runSubscriptionCheck(ctx JobContext) {
	subs, err := ctx.Store().ListSubscriptions()
	if err != nil {
		log.Printf("jobs: failed to list subscriptions: %v", err)
		return
	}
	for _, sub := range subs {
		run, err := ctx.Tracker().Run(context.Background(), sub.SpecNumber)
		if errors.Is(err, tracker.ErrRunInProgress) {
			log.Printf("jobs: tracking busy, postponing subscription check")
			return
		}
		if err != nil {
			log.Printf("jobs: subscription check for %s failed: %v", sub.SpecNumber, err)
			continue
		}
		log.Printf("jobs: subscription check for %s finished with status %s", sub.SpecNumber, run.Status)
		if err := ctx.Store().TouchSubscription(sub.ID); err != nil {
			log.Printf("jobs: failed to mark subscription %d checked: %v", sub.ID, err)
		}
	}
}

func runSessionCleanup(ctx JobContext) {
	if err := ctx.Store().DeleteExpiredSessions(); err != nil {
		log.Printf("jobs: session cleanup failed: %v", err)
	}
}

// runTempCleanup removes files in the tracker temp directory older than
// tempFileMaxAge.
func runTempCleanup(ctx JobContext) {
	dir := ctx.Config().Tracker.TempDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("jobs: temp cleanup failed to read %s: %v", dir, err)
		}
		return
	}
	cutoff := time.Now().Add(-tempFileMaxAge)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("jobs: failed to remove %s: %v", path, err)
		}
	}
}
