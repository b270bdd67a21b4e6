package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aldersync/voice-core/internal/audit"
	"github.com/aldersync/voice-core/internal/controller"
	"github.com/aldersync/voice-core/internal/entity"
	"github.com/aldersync/voice-core/internal/infrastructure/config"
	"github.com/aldersync/voice-core/internal/infrastructure/database"
	"github.com/aldersync/voice-core/internal/infrastructure/logging"
	"github.com/aldersync/voice-core/internal/intent"
	"github.com/aldersync/voice-core/internal/pipeline"
	"github.com/aldersync/voice-core/internal/session"
	"github.com/aldersync/voice-core/migrations"
)

// newTestServer wires a server backed by real components and returns an
// httptest server over its router.
func newTestServer(t *testing.T, maxCommands int, controllerHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	lexicon, err := entity.LoadLexicon("../../configs/lexicon.yaml")
	if err != nil {
		t.Fatalf("LoadLexicon() error = %v", err)
	}
	return newTestServerWithLexicon(t, maxCommands, controllerHandler, lexicon)
}

func newTestServerWithLexicon(t *testing.T, maxCommands int, controllerHandler http.HandlerFunc, lexicon *entity.Lexicon) *httptest.Server {
	t.Helper()

	table, err := intent.LoadTable("../../configs/rules.yaml")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ctrl := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if controllerHandler != nil {
			controllerHandler(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ctrl.Close)

	audits := audit.NewSQLiteRepository(db)

	p := pipeline.New(pipeline.Deps{
		Classifier: intent.NewClassifier(table),
		Resolver: entity.NewResolver(lexicon, config.LimitsConfig{
			TemperatureMin: 50, TemperatureMax: 90,
			BrightnessMin: 0, BrightnessMax: 255,
		}),
		Governor: session.NewGovernor(db, config.SessionConfig{
			MaxCommands:        maxCommands,
			IdleTimeoutMinutes: 30,
			MaxDurationMinutes: 1440,
		}),
		Dispatcher: controller.NewClient(config.ControllerConfig{
			BaseURL: ctrl.URL, Token: "test", TimeoutSeconds: 5,
		}),
		Audit:  audits,
		Logger: logging.Default(),
	})

	srv, err := New(Deps{
		Logger:   logging.Default(),
		Pipeline: p,
		Audit:    audits,
		DB:       db,
		Hub:      NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, logging.Default()),
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	return ts
}

func postCommand(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(ts.URL+"/command", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /command error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHandleCommand_Success(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	resp, body := postCommand(t, ts, `{"command": "turn on the living room lights", "session_id": "sess-1"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %v)", resp.StatusCode, body)
	}
	if body["intent"] != "turn_on_light" {
		t.Errorf("intent = %v, want turn_on_light", body["intent"])
	}
	result, _ := body["result"].(map[string]any)
	if result == nil || result["success"] != true {
		t.Errorf("result = %v, want success", body["result"])
	}
	if result["entity_id"] != "light.living_room_lights" {
		t.Errorf("entity_id = %v, want light.living_room_lights", result["entity_id"])
	}
}

func TestHandleCommand_AssignsSessionWhenAbsent(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	resp, body := postCommand(t, ts, `{"command": "turn on the lights"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	sessionID, _ := body["session_id"].(string)
	if sessionID == "" {
		t.Error("session_id missing from response, server must assign one")
	}
}

func TestHandleCommand_UnknownCommandIsOK(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	resp, body := postCommand(t, ts, `{"command": "do a backflip", "session_id": "sess-1"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["intent"] != "unknown_command" {
		t.Errorf("intent = %v, want unknown_command", body["intent"])
	}
	result, _ := body["result"].(map[string]any)
	if result == nil || result["success"] != false {
		t.Errorf("result = %v, want success false", body["result"])
	}
	if msg, _ := result["message"].(string); !strings.Contains(msg, "not recognised") {
		t.Errorf("message = %q, want a suggestion", msg)
	}
}

func TestHandleCommand_StatusMapping(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantCategory string
	}{
		{
			name:         "empty command",
			body:         `{"command": "", "session_id": "s"}`,
			wantStatus:   http.StatusBadRequest,
			wantCategory: "invalid_input",
		},
		{
			name:         "malicious pattern",
			body:         `{"command": "turn on the lights; rm -rf /", "session_id": "s"}`,
			wantStatus:   http.StatusBadRequest,
			wantCategory: "invalid_input",
		},
		{
			name:         "unknown entity",
			body:         `{"command": "turn on the disco lights", "session_id": "s"}`,
			wantStatus:   http.StatusBadRequest,
			wantCategory: "unknown_entity",
		},
		{
			name:         "out of range temperature",
			body:         `{"command": "set temperature to 999 degrees", "session_id": "s"}`,
			wantStatus:   http.StatusBadRequest,
			wantCategory: "out_of_range",
		},
		{
			name:         "malformed json",
			body:         `not json`,
			wantStatus:   http.StatusBadRequest,
			wantCategory: "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 100, nil)

			resp, body := postCommand(t, ts, tt.body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.wantStatus, body)
			}
			errMsg, _ := body["error"].(string)
			if !strings.HasPrefix(errMsg, tt.wantCategory+": ") {
				t.Errorf("error = %q, want %q prefix", errMsg, tt.wantCategory+": ")
			}
		})
	}
}

// A lexicon entry in a domain outside the allow-list must surface as a
// 403, not a 400, so operators can tell a misconfigured lexicon from a
// bad command.
func TestHandleCommand_DomainNotPermittedIs403(t *testing.T) {
	lexicon, err := entity.ParseLexicon([]byte(`
lights:
  - canonical: camera.front_porch
    synonyms: [porch camera]
`))
	if err != nil {
		t.Fatalf("ParseLexicon() error = %v", err)
	}
	ts := newTestServerWithLexicon(t, 100, nil, lexicon)

	resp, body := postCommand(t, ts, `{"command": "turn on the porch camera light", "session_id": "s"}`)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body %v)", resp.StatusCode, body)
	}
	errMsg, _ := body["error"].(string)
	if !strings.HasPrefix(errMsg, "domain_not_permitted: ") {
		t.Errorf("error = %q, want domain_not_permitted prefix", errMsg)
	}
	if strings.Contains(errMsg, "camera") {
		t.Errorf("error = %q, entity detail must not leak into the reason", errMsg)
	}
}

func TestHandleCommand_QuotaExceededIs429(t *testing.T) {
	ts := newTestServer(t, 2, nil)

	for i := 0; i < 2; i++ {
		resp, body := postCommand(t, ts, `{"command": "turn on the lights", "session_id": "sess-q"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("command %d status = %d, want 200 (body %v)", i+1, resp.StatusCode, body)
		}
	}

	resp, body := postCommand(t, ts, `{"command": "turn on the lights", "session_id": "sess-q"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	errMsg, _ := body["error"].(string)
	if !strings.HasPrefix(errMsg, "quota_exceeded: ") {
		t.Errorf("error = %q, want quota_exceeded prefix", errMsg)
	}
}

func TestHandleCommand_ControllerFailures(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		wantStatus   int
		wantCategory string
	}{
		{
			name: "auth failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantStatus:   http.StatusBadGateway,
			wantCategory: "controller_auth_failure",
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus:   http.StatusBadGateway,
			wantCategory: "controller_rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 100, tt.handler)

			resp, body := postCommand(t, ts, `{"command": "lock the front door", "session_id": "s"}`)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.wantStatus, body)
			}
			errMsg, _ := body["error"].(string)
			if !strings.HasPrefix(errMsg, tt.wantCategory+": ") {
				t.Errorf("error = %q, want %q prefix", errMsg, tt.wantCategory+": ")
			}
		})
	}
}

func TestHandleListAudit(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	postCommand(t, ts, `{"command": "turn on the lights", "session_id": "sess-a"}`)
	postCommand(t, ts, `{"command": "do a backflip", "session_id": "sess-a"}`)

	resp, err := http.Get(ts.URL + "/api/v1/audit?session_id=sess-a")
	if err != nil {
		t.Fatalf("GET /api/v1/audit error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Events []audit.Event `json:"events"`
		Count  int           `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
	for _, e := range body.Events {
		if e.SessionID != "sess-a" {
			t.Errorf("event session = %s, want sess-a", e.SessionID)
		}
	}
}

func TestHandleListAudit_RejectsBadLimit(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	resp, err := http.Get(ts.URL + "/api/v1/audit?limit=bogus")
	if err != nil {
		t.Fatalf("GET /api/v1/audit error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, 100, nil)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /api/v1/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}
