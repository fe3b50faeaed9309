package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/export"
	"github.com/spectrack/spectrack-go/internal/models"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/tracker/sources"
	"github.com/spectrack/spectrack-go/internal/websocket"
)

// OutputFile is the workbook written at the end of every completed run.
const OutputFile = "approved_clauses.xlsx"

var (
	// ErrRunInProgress is returned by Start when a run is already active.
	ErrRunInProgress = errors.New("a tracking run is already in progress")
	// ErrSpecRequired is returned when the spec number is empty.
	ErrSpecRequired = errors.New("spec number is required")
)

// Service runs spec tracking jobs. Only one run is active at a time.
type Service struct {
	cfg     *config.Config
	store   *store.Store
	hub     *websocket.Hub
	source  sources.Source
	clauses *ClauseSet

	mu          sync.Mutex
	active      bool
	activeRunID int64
}

// NewService creates a tracking service using the given source and clause
// set.
func NewService(cfg *config.Config, st *store.Store, hub *websocket.Hub, src sources.Source, clauses *ClauseSet) *Service {
	return &Service{cfg: cfg, store: st, hub: hub, source: src, clauses: clauses}
}

// Active returns the ID of the currently running job, if any.
func (s *Service) Active() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRunID, s.active
}

// Start launches a tracking run in the background. It returns the created
// run record immediately, or ErrRunInProgress when a run is already active.
func (s *Service) Start(specNumber string) (*models.TrackingRun, error) {
	run, err := s.begin(specNumber)
	if err != nil {
		return nil, err
	}
	go func() {
		defer s.release()
		s.execute(context.Background(), run)
	}()
	return run, nil
}

// Run executes a tracking run synchronously. It is used by scheduled
// subscription checks.
func (s *Service) Run(ctx context.Context, specNumber string) (*models.TrackingRun, error) {
	run, err := s.begin(specNumber)
	if err != nil {
		return nil, err
	}
	defer s.release()
	s.execute(ctx, run)
	return s.store.GetRun(run.ID)
}

func (s *Service) begin(specNumber string) (*models.TrackingRun, error) {
	specNumber = strings.TrimSpace(specNumber)
	if specNumber == "" {
		return nil, ErrSpecRequired
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.active = true
	s.mu.Unlock()

	run, err := s.store.CreateRun(specNumber)
	if err != nil {
		s.release()
		return nil, err
	}

	s.mu.Lock()
	s.activeRunID = run.ID
	s.mu.Unlock()
	return run, nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// execute performs the full tracking workflow for one run and records the
// terminal state.
func (s *Service) execute(ctx context.Context, run *models.TrackingRun) {
	matches, err := s.track(ctx, run)
	if err != nil {
		s.errorf(run.ID, "Run failed: %v", err)
		s.finish(run, models.RunStatusFailed, err.Error())
		return
	}
	s.finish(run, models.RunStatusSuccess, fmt.Sprintf("completed with %d matches", len(matches)))
}

func (s *Service) track(ctx context.Context, run *models.TrackingRun) ([]models.ResultRow, error) {
	s.progress(run, 0, "starting")
	s.logf(run.ID, "Starting 3GPP automation for spec: %s", run.SpecNumber)

	meetings, err := s.source.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting folders: %w", err)
	}
	if len(meetings) == 0 {
		s.logf(run.ID, "No meeting folders found.")
		return nil, nil
	}

	s.logf(run.ID, "Found %d meeting folders to process.", len(meetings))
	s.progress(run, 5, "fetched meeting list")

	var matches []models.ResultRow
	for i, meeting := range meetings {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		s.logf(run.ID, "Processing folder %d/%d: %s", i+1, len(meetings), meeting.Name)

		workbook, err := s.source.FetchCRPackList(ctx, meeting)
		if errors.Is(err, sources.ErrNoCRPackList) {
			s.logf(run.ID, "No Excel file found in %s, skipping...", meeting.Name)
			continue
		}
		if err != nil {
			s.errorf(run.ID, "Could not fetch CR pack list for %s: %v", meeting.Name, err)
			continue
		}

		refs, err := ParseCRPackList(workbook, run.SpecNumber)
		if err != nil {
			s.errorf(run.ID, "Could not parse CR pack list for %s: %v", meeting.Name, err)
			continue
		}
		if len(refs) == 0 {
			s.logf(run.ID, "No relevant CRs found in %s, skipping...", meeting.Name)
			continue
		}

		// The newest folder with relevant CRs is the only one processed.
		s.logf(run.ID, "Found %d relevant CRs. Processing this folder and then stopping.", len(refs))
		matches = s.processMeeting(ctx, run, meeting, refs)
		break
	}

	outputPath := filepath.Join(s.cfg.Tracker.OutputDir, OutputFile)
	if err := export.WriteResults(outputPath, "Matches", matches); err != nil {
		s.errorf(run.ID, "Failed to write output workbook: %v", err)
	} else {
		s.logf(run.ID, "Wrote %d matches to %s", len(matches), outputPath)
	}
	return matches, nil
}

func (s *Service) processMeeting(ctx context.Context, run *models.TrackingRun, meeting sources.Meeting, refs []CRRef) []models.ResultRow {
	var matches []models.ResultRow
	for j, ref := range refs {
		if ctx.Err() != nil {
			return matches
		}
		s.logf(run.ID, "Processing CR %d/%d - RP: %s, R4: %s", j+1, len(refs), ref.RPNumber, ref.R4Document)

		if match := s.processCR(ctx, run, meeting, ref); match != nil {
			row := models.ResultRow{
				MeetingFolder:   meeting.Name,
				RPNumber:        ref.RPNumber,
				R4Document:      ref.R4Document,
				MatchingClause:  match.Clause,
				SummaryOfChange: match.Summary,
			}
			matches = append(matches, row)
			if err := s.store.InsertResult(run.ID, row); err != nil {
				s.errorf(run.ID, "Failed to store result for %s: %v", ref.R4Document, err)
			}
			s.logf(run.ID, "Match found! Clause: %s", match.Clause)
		}

		pct := 5 + int(float64(j+1)/float64(len(refs))*95)
		s.progress(run, pct, fmt.Sprintf("processed %d/%d CRs in %s", j+1, len(refs), meeting.Name))
	}
	return matches
}

func (s *Service) processCR(ctx context.Context, run *models.TrackingRun, meeting sources.Meeting, ref CRRef) *ClauseMatch {
	archive, err := s.source.FetchArchive(ctx, meeting, ref.RPNumber)
	if err != nil {
		s.errorf(run.ID, "Failed to download archive for %s: %v", ref.RPNumber, err)
		return nil
	}

	docx, err := ExtractR4Document(archive, ref.R4Document)
	if errors.Is(err, ErrDocumentNotFound) {
		s.logf(run.ID, "Could not find %s.docx in %s.zip", ref.R4Document, ref.RPNumber)
		return nil
	}
	if err != nil {
		s.errorf(run.ID, "Failed to read archive %s.zip: %v", ref.RPNumber, err)
		return nil
	}

	match, err := ScanDocument(docx, s.clauses)
	if err != nil {
		s.errorf(run.ID, "Failed to scan %s: %v", ref.R4Document, err)
		return nil
	}
	return match
}

func (s *Service) logf(runID int64, format string, args ...any) {
	s.appendLog(runID, "INFO", fmt.Sprintf(format, args...))
}

func (s *Service) errorf(runID int64, format string, args ...any) {
	s.appendLog(runID, "ERROR", fmt.Sprintf(format, args...))
}

// appendLog records a run log line in the same shape the log file uses:
// "2025-01-02 15:04:05 - LEVEL - message".
func (s *Service) appendLog(runID int64, level, msg string) {
	log.Printf("tracker: run %d: %s", runID, msg)
	line := fmt.Sprintf("%s - %s - %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	if err := s.store.AppendRunLog(runID, line); err != nil {
		log.Printf("tracker: failed to persist log line for run %d: %v", runID, err)
	}
}

func (s *Service) progress(run *models.TrackingRun, pct int, message string) {
	if err := s.store.UpdateRunProgress(run.ID, pct, message); err != nil {
		log.Printf("tracker: failed to update progress for run %d: %v", run.ID, err)
	}
	s.broadcast(run, pct, models.RunStatusRunning, message, false)
}

func (s *Service) finish(run *models.TrackingRun, status, message string) {
	if err := s.store.FinishRun(run.ID, status, message); err != nil {
		log.Printf("tracker: failed to finish run %d: %v", run.ID, err)
	}
	pct := 100
	if status == models.RunStatusFailed {
		if current, err := s.store.GetRun(run.ID); err == nil {
			pct = current.Progress
		}
	}
	s.broadcast(run, pct, status, message, true)
}

func (s *Service) broadcast(run *models.TrackingRun, pct int, status, message string, done bool) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(models.ProgressUpdate{
		RunID:      run.ID,
		SpecNumber: run.SpecNumber,
		Message:    message,
		Progress:   float64(pct),
		Status:     status,
		Done:       done,
	})
}
