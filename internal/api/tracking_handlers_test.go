package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spectrack/spectrack-go/internal/models"
	"github.com/spectrack/spectrack-go/internal/tracker/sources"
)

func TestStartTrackingValidation(t *testing.T) {
	env := setupTestServer(t)

	t.Run("missing spec number", func(t *testing.T) {
		rr := env.do(t, "POST", "/start-tracking", map[string]string{"spec_number": ""})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		var body map[string]string
		json.Unmarshal(rr.Body.Bytes(), &body)
		if body["error"] != "Spec number is required" {
			t.Errorf("unexpected error message: %q", body["error"])
		}
	})

	t.Run("empty body", func(t *testing.T) {
		rr := env.do(t, "POST", "/start-tracking", nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/start-tracking", bytes.NewReader([]byte("{oops")))
		rr := httptest.NewRecorder()
		env.Server.Router().ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestTrackingEndpointsBeforeFirstRun(t *testing.T) {
	env := setupTestServer(t)

	rr := env.do(t, "GET", "/progress", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var progress map[string]int
	json.Unmarshal(rr.Body.Bytes(), &progress)
	if progress["progress"] != 0 {
		t.Errorf("expected progress 0 before any run, got %d", progress["progress"])
	}

	rr = env.do(t, "GET", "/logs", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "" {
		t.Errorf("expected empty log body, got %d %q", rr.Code, rr.Body.String())
	}

	rr = env.do(t, "GET", "/results", nil)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %q", rr.Body.String())
	}
}

func TestTrackingFullCycle(t *testing.T) {
	env := setupTestServer(t)
	env.Source.AddMeeting(sources.Meeting{Name: "TSGR_106", ModifiedAt: time.Now()}, nil)

	rr := env.do(t, "POST", "/start-tracking", map[string]string{"spec_number": "38.101-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body["message"] != "Tracking started" {
		t.Errorf("unexpected response message: %q", body["message"])
	}

	env.waitForRunCompletion(t)

	rr = env.do(t, "GET", "/progress", nil)
	var progress map[string]int
	json.Unmarshal(rr.Body.Bytes(), &progress)
	if progress["progress"] != 100 {
		t.Errorf("expected terminal progress 100, got %d", progress["progress"])
	}

	rr = env.do(t, "GET", "/logs", nil)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected plain text logs, got content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "Starting 3GPP automation for spec: 38.101-1") {
		t.Errorf("log body missing start line:\n%s", rr.Body.String())
	}
}

func TestResultsUseDisplayColumnKeys(t *testing.T) {
	env := setupTestServer(t)

	run, err := env.Store.CreateRun("38.101-1")
	if err != nil {
		t.Fatal(err)
	}
	err = env.Store.InsertResult(run.ID, models.ResultRow{
		MeetingFolder:   "TSGR_106",
		RPNumber:        "RP-243210",
		R4Document:      "R4-2412345",
		MatchingClause:  "6.5.2.2",
		SummaryOfChange: "Tightened limits.",
	})
	if err != nil {
		t.Fatal(err)
	}

	rr := env.do(t, "GET", "/results", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	raw := rr.Body.String()
	for _, key := range models.ResultColumns {
		if !strings.Contains(raw, `"`+key+`"`) {
			t.Errorf("results JSON missing display key %q:\n%s", key, raw)
		}
	}
}

func TestExport(t *testing.T) {
	env := setupTestServer(t)

	run, err := env.Store.CreateRun("38.101-1")
	if err != nil {
		t.Fatal(err)
	}
	env.Store.InsertResult(run.ID, models.ResultRow{
		MeetingFolder:  "TSGR_106",
		RPNumber:       "RP-243210",
		R4Document:     "R4-2412345",
		MatchingClause: "6.5.2.2",
	})

	rr := env.do(t, "GET", "/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "3gpp_results.xlsx") {
		t.Errorf("unexpected content disposition: %q", cd)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("exported body is not a valid workbook: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("Results")
	if err != nil {
		t.Fatalf("exported workbook has no 'Results' sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected header + 1 row, got %d", len(rows))
	}
}
