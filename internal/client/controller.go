package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spectrack/spectrack-go/internal/export"
	"github.com/spectrack/spectrack-go/internal/models"
)

// DefaultExportFile is the workbook name used when ExportResults gets an
// empty path.
const DefaultExportFile = "3gpp_results.xlsx"

// DefaultPollInterval matches the browser UI's polling cadence.
const DefaultPollInterval = time.Second

var (
	// ErrSpecRequired is returned by Start for a blank spec number. No
	// request is sent in that case.
	ErrSpecRequired = errors.New("spec number is required")
	// ErrNotFinished is returned by ExportResults before a run reached
	// its terminal state.
	ErrNotFinished = errors.New("tracking has not finished")
)

// Controller drives a tracking run the way the web UI does: it starts the
// run, then polls progress, logs and results on independent loops until
// progress reaches 100, keeping the last snapshot of each stream.
//
// Each stream is polled by a single goroutine that issues one request at a
// time, so a slow response never piles up concurrent requests for the same
// stream. Re-invoking Start cancels the previous loops before launching new
// ones.
type Controller struct {
	client   *Client
	interval time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	gen      int
	doneCh   chan struct{}
	progress int
	logs     string
	results  []models.ResultRow
	done     bool
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// NewController creates a controller polling at the default one-second
// interval.
func NewController(c *Client) *Controller {
	return &Controller{client: c, interval: DefaultPollInterval, doneCh: closedChan()}
}

// SetInterval overrides the polling interval. It only affects loops started
// afterwards.
func (pc *Controller) SetInterval(d time.Duration) {
	pc.mu.Lock()
	pc.interval = d
	pc.mu.Unlock()
}

// Start validates the spec number, posts the tracking request and launches
// the polling loops. A blank spec number fails immediately without touching
// the network. Any loops from a previous Start are cancelled first.
func (pc *Controller) Start(ctx context.Context, specNumber string) error {
	if isBlank(specNumber) {
		return ErrSpecRequired
	}
	if err := pc.client.StartTracking(ctx, specNumber); err != nil {
		return err
	}

	pc.mu.Lock()
	if pc.cancel != nil {
		pc.cancel()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	pc.cancel = cancel
	pc.gen++
	gen := pc.gen
	pc.doneCh = make(chan struct{})
	pc.progress = 0
	pc.logs = ""
	pc.results = nil
	pc.done = false
	interval := pc.interval
	doneCh := pc.doneCh
	pc.mu.Unlock()

	// A poll from a superseded run must not mark the new run finished.
	finish := func() {
		pc.mu.Lock()
		if pc.gen == gen && !pc.done {
			pc.done = true
			close(doneCh)
		}
		pc.mu.Unlock()
		cancel()
	}

	go pc.pollLoop(runCtx, interval, func(ctx context.Context) {
		p, err := pc.client.FetchProgress(ctx)
		if err != nil {
			return
		}
		pc.mu.Lock()
		if pc.gen == gen {
			pc.progress = p
		}
		pc.mu.Unlock()
		if p >= 100 {
			// One final sweep so the retained snapshots include the
			// terminal state of the other streams.
			pc.refreshLogs(ctx, gen)
			pc.refreshResults(ctx, gen)
			finish()
		}
	})
	go pc.pollLoop(runCtx, interval, func(ctx context.Context) { pc.refreshLogs(ctx, gen) })
	go pc.pollLoop(runCtx, interval, func(ctx context.Context) { pc.refreshResults(ctx, gen) })

	return nil
}

// Stop cancels any running polling loops.
func (pc *Controller) Stop() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.cancel != nil {
		pc.cancel()
	}
}

// Done returns a channel closed when the current run reaches its terminal
// state.
func (pc *Controller) Done() <-chan struct{} {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.doneCh
}

// Progress returns the last polled progress percentage.
func (pc *Controller) Progress() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.progress
}

// Logs returns the last polled log text.
func (pc *Controller) Logs() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.logs
}

// Results returns the last polled result set.
func (pc *Controller) Results() []models.ResultRow {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	out := make([]models.ResultRow, len(pc.results))
	copy(out, pc.results)
	return out
}

// Finished reports whether the current run reached its terminal state.
func (pc *Controller) Finished() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.done
}

// ExportResults writes the retained result set to an Excel workbook with a
// "Results" sheet. Path defaults to DefaultExportFile. Export is only
// available once the run finished; the retained snapshot is used, no
// request is made.
func (pc *Controller) ExportResults(path string) error {
	pc.mu.Lock()
	if !pc.done {
		pc.mu.Unlock()
		return ErrNotFinished
	}
	rows := make([]models.ResultRow, len(pc.results))
	copy(rows, pc.results)
	pc.mu.Unlock()

	if path == "" {
		path = DefaultExportFile
	}
	return export.WriteResults(path, "Results", rows)
}

// pollLoop calls poll once per tick until the context is cancelled. Polls
// run synchronously, so each stream has at most one request in flight.
func (pc *Controller) pollLoop(ctx context.Context, interval time.Duration, poll func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

// refreshLogs replaces the retained log snapshot. Poll errors are ignored;
// the next tick retries.
func (pc *Controller) refreshLogs(ctx context.Context, gen int) {
	logs, err := pc.client.FetchLogs(ctx)
	if err != nil {
		return
	}
	pc.mu.Lock()
	if pc.gen == gen {
		pc.logs = logs
	}
	pc.mu.Unlock()
}

// refreshResults replaces the retained result set.
func (pc *Controller) refreshResults(ctx context.Context, gen int) {
	rows, err := pc.client.FetchResults(ctx)
	if err != nil {
		return
	}
	pc.mu.Lock()
	if pc.gen == gen {
		pc.results = rows
	}
	pc.mu.Unlock()
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
