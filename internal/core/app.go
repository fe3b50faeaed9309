// Package core wires the application's components together.
package core

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron"

	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/db"
	"github.com/spectrack/spectrack-go/internal/jobs"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/tracker"
	"github.com/spectrack/spectrack-go/internal/tracker/sources"
	"github.com/spectrack/spectrack-go/internal/tracker/sources/tsgran"
	"github.com/spectrack/spectrack-go/internal/websocket"
)

// App holds the long-lived components of the application and satisfies
// jobs.JobContext.
type App struct {
	version string
	cfg     *config.Config
	dbConn  *sql.DB
	store   *store.Store
	hub     *websocket.Hub
	tracker *tracker.Service
	manager *jobs.Manager

	scheduler     *gocron.Scheduler
	clauseWatcher *fsnotify.Watcher
}

// New builds a fully wired App: database, store, websocket hub, tracker
// service, background jobs and their schedule.
func New(version string, cfg *config.Config) (*App, error) {
	dbConn, err := db.Init(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		version: version,
		cfg:     cfg,
		dbConn:  dbConn,
		store:   store.New(dbConn),
		hub:     websocket.NewHub(),
	}
	go app.hub.Run()

	// Runs left behind by a crashed or restarted process can never finish.
	if n, err := app.store.FailInterruptedRuns(); err != nil {
		log.Printf("core: failed to clean up interrupted runs: %v", err)
	} else if n > 0 {
		log.Printf("core: marked %d interrupted runs as failed", n)
	}

	clauses, watcher, err := loadClauses(cfg)
	if err != nil {
		dbConn.Close()
		return nil, err
	}
	app.clauseWatcher = watcher

	src := tsgran.New(
		cfg.Tracker.BaseURL,
		cfg.Tracker.UserAgent,
		time.Duration(cfg.Tracker.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Tracker.ArchiveTimeout)*time.Second,
	)
	sources.Register(src)
	app.tracker = tracker.NewService(cfg, app.store, app.hub, src, clauses)

	app.manager = jobs.NewManager(app)
	jobs.RegisterAll(app.manager)
	app.scheduler = jobs.StartScheduler(app, app.manager)

	if err := os.MkdirAll(cfg.Tracker.TempDir, 0755); err != nil {
		log.Printf("core: failed to create temp dir %s: %v", cfg.Tracker.TempDir, err)
	}

	return app, nil
}

func loadClauses(cfg *config.Config) (*tracker.ClauseSet, *fsnotify.Watcher, error) {
	if cfg.Tracker.ClauseFile == "" {
		return tracker.NewClauseSet(), nil, nil
	}
	list, err := tracker.LoadClauseFile(cfg.Tracker.ClauseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load clause file: %w", err)
	}
	clauses := tracker.NewClauseSet(list...)
	watcher, err := tracker.WatchClauseFile(cfg.Tracker.ClauseFile, clauses)
	if err != nil {
		log.Printf("core: clause file hot reload disabled: %v", err)
		return clauses, nil, nil
	}
	return clauses, watcher, nil
}

// Close shuts down the scheduler, file watcher and database connection.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.clauseWatcher != nil {
		a.clauseWatcher.Close()
	}
	if a.dbConn != nil {
		a.dbConn.Close()
	}
}

func (a *App) Version() string           { return a.version }
func (a *App) Config() *config.Config    { return a.cfg }
func (a *App) DB() *sql.DB               { return a.dbConn }
func (a *App) Store() *store.Store       { return a.store }
func (a *App) WsHub() *websocket.Hub     { return a.hub }
func (a *App) Tracker() *tracker.Service { return a.tracker }
func (a *App) JobManager() *jobs.Manager { return a.manager }
