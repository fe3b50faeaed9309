// Package tracker implements the 3GPP change-request tracking engine: it
// walks TSG-RAN meeting folders, filters approved CRs for a spec number and
// scans the referenced R4 documents for affected clauses.
package tracker

import (
	"bufio"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// defaultClauses is the RAN4 clause database for TS 38.101-1, used when no
// clause file is configured.
var defaultClauses = []string{
	"4.3", "5.1", "5.2", "5.3.1", "5.3.2", "5.3.3", "5.3.5",
	"6.3.2", "6.3.3", "6.3.3.1", "6.3.3.2",
	"6.4", "6.4.1", "6.4.2", "6.4.2.0", "6.4.2.1", "6.4.2.1a", "6.4.2.2",
	"6.4.2.3", "6.4.2.4", "6.4.2.4.1", "6.4.2.4.2", "6.4.2.5",
	"6.5.1", "6.5.2.1", "6.5.2.2", "6.5.2.3", "6.5.2.4",
	"6.5.2.3.1", "6.5.2.3.2", "6.5.2.3.3", "6.5.2.3.4",
	"6.5.2.3.7", "6.5.2.3.8", "6.5.2.3.9",
	"A.3", "C.2",
	"F.0", "F.1", "F.2", "F.3", "F.4", "F.5",
	"F.5.1", "F.5.2", "F.5.3", "F.5.4", "F.5.5",
	"F.6", "F.7", "F.8", "F.9", "F.10",
}

// ClauseSet is a thread-safe set of spec clause numbers.
type ClauseSet struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewClauseSet builds a set from the given clause numbers. With no arguments
// it contains the default TS 38.101-1 clauses.
func NewClauseSet(clauses ...string) *ClauseSet {
	if len(clauses) == 0 {
		clauses = defaultClauses
	}
	cs := &ClauseSet{}
	cs.Replace(clauses)
	return cs
}

// Contains reports whether the clause number is in the set.
func (cs *ClauseSet) Contains(clause string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.set[clause]
	return ok
}

// Len returns the number of clauses in the set.
func (cs *ClauseSet) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.set)
}

// Replace swaps the set's contents for the given clauses.
func (cs *ClauseSet) Replace(clauses []string) {
	set := make(map[string]struct{}, len(clauses))
	for _, c := range clauses {
		c = strings.TrimSpace(c)
		if c != "" {
			set[c] = struct{}{}
		}
	}
	cs.mu.Lock()
	cs.set = set
	cs.mu.Unlock()
}

// LoadClauseFile reads a clause file: one clause number per line, blank
// lines and lines starting with '#' ignored.
func LoadClauseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var clauses []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		clauses = append(clauses, line)
	}
	return clauses, scanner.Err()
}

// WatchClauseFile reloads the clause set whenever the file changes on disk.
// The returned watcher should be closed on shutdown.
func WatchClauseFile(path string, cs *ClauseSet) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				clauses, err := LoadClauseFile(path)
				if err != nil {
					log.Printf("tracker: failed to reload clause file %s: %v", path, err)
					continue
				}
				cs.Replace(clauses)
				log.Printf("tracker: reloaded %d clauses from %s", len(clauses), path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("tracker: clause file watcher error: %v", err)
			}
		}
	}()

	return watcher, nil
}
