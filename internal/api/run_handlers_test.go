package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/spectrack/spectrack-go/internal/models"
)

func TestRunHandlers(t *testing.T) {
	env := setupTestServer(t)
	cookie := env.loginAs(t, "alice", "user")

	run, err := env.Store.CreateRun("38.101-1")
	if err != nil {
		t.Fatal(err)
	}
	env.Store.AppendRunLog(run.ID, "first line")
	env.Store.InsertResult(run.ID, models.ResultRow{
		MeetingFolder: "TSGR_106", RPNumber: "RP-243210",
		R4Document: "R4-2412345", MatchingClause: "6.5.2.2",
	})

	t.Run("list", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/runs", nil, cookie)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var runs []models.TrackingRun
		json.Unmarshal(rr.Body.Bytes(), &runs)
		if len(runs) != 1 || runs[0].SpecNumber != "38.101-1" {
			t.Errorf("unexpected runs payload: %v", runs)
		}
	})

	t.Run("get", func(t *testing.T) {
		rr := env.do(t, "GET", fmt.Sprintf("/api/runs/%d", run.ID), nil, cookie)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var got models.TrackingRun
		json.Unmarshal(rr.Body.Bytes(), &got)
		if got.ID != run.ID {
			t.Errorf("expected run %d, got %d", run.ID, got.ID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/runs/9999", nil, cookie)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/runs/abc", nil, cookie)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("logs", func(t *testing.T) {
		rr := env.do(t, "GET", fmt.Sprintf("/api/runs/%d/logs", run.ID), nil, cookie)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "first line") {
			t.Errorf("unexpected log body: %q", rr.Body.String())
		}
	})

	t.Run("results", func(t *testing.T) {
		rr := env.do(t, "GET", fmt.Sprintf("/api/runs/%d/results", run.ID), nil, cookie)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var rows []models.ResultRow
		json.Unmarshal(rr.Body.Bytes(), &rows)
		if len(rows) != 1 || rows[0].RPNumber != "RP-243210" {
			t.Errorf("unexpected results payload: %v", rows)
		}
	})
}

func TestSubscriptionHandlers(t *testing.T) {
	env := setupTestServer(t)
	cookie := env.loginAs(t, "alice", "user")

	rr := env.do(t, "GET", "/api/subscriptions", nil, cookie)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %q", rr.Body.String())
	}

	rr = env.do(t, "POST", "/api/subscriptions", map[string]string{"spec_number": "38.101-1"}, cookie)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var sub models.Subscription
	json.Unmarshal(rr.Body.Bytes(), &sub)
	if sub.SpecNumber != "38.101-1" {
		t.Errorf("unexpected subscription: %+v", sub)
	}

	rr = env.do(t, "POST", "/api/subscriptions", map[string]string{"spec_number": " "}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank spec, got %d", rr.Code)
	}

	rr = env.do(t, "POST", fmt.Sprintf("/api/subscriptions/%d/recheck", sub.ID), nil, cookie)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for recheck, got %d: %s", rr.Code, rr.Body.String())
	}
	env.waitForRunCompletion(t)
	latest, err := env.Store.GetLatestRun()
	if err != nil || latest == nil {
		t.Fatalf("expected a run after recheck, got %v (err %v)", latest, err)
	}
	if latest.SpecNumber != "38.101-1" {
		t.Errorf("recheck tracked wrong spec: %q", latest.SpecNumber)
	}

	rr = env.do(t, "POST", "/api/subscriptions/9999/recheck", nil, cookie)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown subscription, got %d", rr.Code)
	}

	rr = env.do(t, "DELETE", fmt.Sprintf("/api/subscriptions/%d", sub.ID), nil, cookie)
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}

	rr = env.do(t, "GET", "/api/subscriptions", nil, cookie)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty array after delete, got %q", rr.Body.String())
	}
}

func TestAdminJobHandlers(t *testing.T) {
	env := setupTestServer(t)
	admin := env.loginAs(t, "root", "admin")

	rr := env.do(t, "GET", "/api/admin/jobs", nil, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var statuses []map[string]any
	json.Unmarshal(rr.Body.Bytes(), &statuses)
	if len(statuses) == 0 {
		t.Fatal("expected registered jobs in status payload")
	}

	rr = env.do(t, "POST", "/api/admin/jobs/session-cleanup/run", nil, admin)
	if rr.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, "POST", "/api/admin/jobs/nope/run", nil, admin)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rr.Code)
	}
}
