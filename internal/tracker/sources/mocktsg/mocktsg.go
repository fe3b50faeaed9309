// Package mocktsg provides an in-memory source implementation for tests and
// local development.
package mocktsg

import (
	"context"
	"fmt"
	"sync"

	"github.com/spectrack/spectrack-go/internal/tracker/sources"
)

// Source serves canned meetings and archives from memory.
type Source struct {
	mu       sync.RWMutex
	meetings []sources.Meeting
	// crLists maps meeting name to a CR pack list workbook.
	crLists map[string][]byte
	// archives maps meeting name + "/" + RP number to a zip archive.
	archives map[string][]byte

	// Err, when set, is returned by every method.
	Err error
}

// New creates an empty mock source.
func New() *Source {
	return &Source{
		crLists:  make(map[string][]byte),
		archives: make(map[string][]byte),
	}
}

func (s *Source) ID() string { return "mock" }

// AddMeeting registers a meeting with an optional CR pack list workbook.
func (s *Source) AddMeeting(m sources.Meeting, crList []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = append(s.meetings, m)
	if crList != nil {
		s.crLists[m.Name] = crList
	}
}

// AddArchive registers a zip archive for a meeting's RP number.
func (s *Source) AddArchive(meetingName, rpNumber string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[meetingName+"/"+rpNumber] = data
}

func (s *Source) ListMeetings(_ context.Context) ([]sources.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]sources.Meeting, len(s.meetings))
	copy(out, s.meetings)
	return out, nil
}

func (s *Source) FetchCRPackList(_ context.Context, m sources.Meeting) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	data, ok := s.crLists[m.Name]
	if !ok {
		return nil, sources.ErrNoCRPackList
	}
	return data, nil
}

func (s *Source) FetchArchive(_ context.Context, m sources.Meeting, rpNumber string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	data, ok := s.archives[m.Name+"/"+rpNumber]
	if !ok {
		return nil, fmt.Errorf("mocktsg: no archive for %s/%s", m.Name, rpNumber)
	}
	return data, nil
}
