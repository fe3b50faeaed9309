package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClauseSetDefaults(t *testing.T) {
	cs := NewClauseSet()
	if cs.Len() == 0 {
		t.Fatal("default clause set should not be empty")
	}
	for _, clause := range []string{"4.3", "6.5.2.3.9", "6.4.2.1a", "F.10"} {
		if !cs.Contains(clause) {
			t.Errorf("expected default set to contain %q", clause)
		}
	}
	if cs.Contains("9.9.9") {
		t.Error("default set should not contain 9.9.9")
	}
}

func TestClauseSetReplace(t *testing.T) {
	cs := NewClauseSet("1.1")
	cs.Replace([]string{"2.2", " 3.3 ", ""})
	if cs.Contains("1.1") {
		t.Error("replaced clause should be gone")
	}
	if !cs.Contains("2.2") || !cs.Contains("3.3") {
		t.Error("expected new clauses after replace")
	}
	if cs.Len() != 2 {
		t.Errorf("expected 2 clauses, got %d", cs.Len())
	}
}

func TestLoadClauseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.txt")
	content := "# RAN4 clauses\n4.3\n\n  5.1  \n# comment\n6.5.2.2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clauses, err := LoadClauseFile(path)
	if err != nil {
		t.Fatalf("LoadClauseFile failed: %v", err)
	}
	want := []string{"4.3", "5.1", "6.5.2.2"}
	if len(clauses) != len(want) {
		t.Fatalf("expected %d clauses, got %v", len(want), clauses)
	}
	for i, w := range want {
		if clauses[i] != w {
			t.Errorf("clause %d: expected %q, got %q", i, w, clauses[i])
		}
	}
}

func TestWatchClauseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.txt")
	if err := os.WriteFile(path, []byte("4.3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cs := NewClauseSet("4.3")
	watcher, err := WatchClauseFile(path, cs)
	if err != nil {
		t.Fatalf("WatchClauseFile failed: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(path, []byte("4.3\n7.7.7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cs.Contains("7.7.7") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("clause set was not reloaded after the file changed")
}
