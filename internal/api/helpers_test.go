package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spectrack/spectrack-go/internal/api"
	"github.com/spectrack/spectrack-go/internal/auth"
	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/jobs"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/testutil"
	"github.com/spectrack/spectrack-go/internal/tracker"
	"github.com/spectrack/spectrack-go/internal/tracker/sources/mocktsg"
	"github.com/spectrack/spectrack-go/internal/websocket"
)

// testEnv bundles everything an API test needs.
type testEnv struct {
	Server  *api.Server
	Store   *store.Store
	Source  *mocktsg.Source
	Tracker *tracker.Service
	Jobs    *jobs.Manager
	Cfg     *config.Config
}

type testJobContext struct{ env *testEnv }

func (c testJobContext) Store() *store.Store       { return c.env.Store }
func (c testJobContext) Config() *config.Config    { return c.env.Cfg }
func (c testJobContext) WsHub() *websocket.Hub     { return nil }
func (c testJobContext) Tracker() *tracker.Service { return c.env.Tracker }

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Tracker.OutputDir = t.TempDir()

	dbConn := testutil.SetupTestDB(t)
	env := &testEnv{
		Store:  store.New(dbConn),
		Source: mocktsg.New(),
		Cfg:    cfg,
	}

	hub := websocket.NewHub()
	go hub.Run()

	env.Tracker = tracker.NewService(cfg, env.Store, hub, env.Source, tracker.NewClauseSet("6.5.2.2"))
	env.Jobs = jobs.NewManager(testJobContext{env})
	jobs.RegisterAll(env.Jobs)

	env.Server = api.NewServer("test", cfg, env.Store, hub, env.Tracker, env.Jobs)
	return env
}

// do performs a request against the server's router.
func (env *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	env.Server.Router().ServeHTTP(rr, req)
	return rr
}

// loginAs creates a user plus session and returns the session cookie.
func (env *testEnv) loginAs(t *testing.T, username, role string) *http.Cookie {
	t.Helper()

	user, err := env.Store.CreateUser(username, "password123", role)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Store.CreateSession(token, user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return &http.Cookie{Name: "session_token", Value: token}
}

// waitForRunCompletion polls until no tracking run is active.
func (env *testEnv) waitForRunCompletion(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, active := env.Tracker.Active(); !active {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("tracking run did not finish in time")
}
