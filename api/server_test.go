package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/service"
	"github.com/wricardo/gridworld/game/tasks"
	"github.com/wricardo/gridworld/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Episode Operations
	ActFunc     func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error)
	BulkActFunc func(ctx context.Context, sessionID string, actions []string, reset bool) (*service.BulkActResult, error)
	ResetFunc   func(ctx context.Context, sessionID string) (*service.View, error)

	// Episode State
	ObserveFunc    func(ctx context.Context, sessionID string) (*service.View, error)
	GetHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*tasks.Config, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *tasks.Config) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Act(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
	if m.ActFunc != nil {
		return m.ActFunc(ctx, sessionID, action, reset)
	}
	return &service.ActResult{Success: true, View: &service.View{}}, nil
}

func (m *MockGameService) BulkAct(ctx context.Context, sessionID string, actions []string, reset bool) (*service.BulkActResult, error) {
	if m.BulkActFunc != nil {
		return m.BulkActFunc(ctx, sessionID, actions, reset)
	}
	return &service.BulkActResult{Success: true, View: &service.View{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*service.View, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &service.View{}, nil
}

func (m *MockGameService) Observe(ctx context.Context, sessionID string) (*service.View, error) {
	if m.ObserveFunc != nil {
		return m.ObserveFunc(ctx, sessionID)
	}
	return &service.View{}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Entries: []service.HistoryEntry{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*tasks.Config, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	config := tasks.DefaultConfig()
	config.Name = configName
	config.Task = "SingleGoal"
	return &config, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *tasks.Config) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub, nil)
}

func makeRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func notFound(sessionID string) error {
	return fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Create session with default config",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: "default", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific config",
			requestBody: map[string]string{"config_id": "light_key"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "light_key" {
						t.Errorf("Expected config name 'light_key', got %s", configName)
					}
					return &service.SessionInfo{ID: "cd34", ConfigName: configName, Task: "LightKey"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.Task != "LightKey" {
					t.Errorf("Expected task LightKey, got %s", resp.Task)
				}
			},
		},
		{
			name: "Unknown config",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope' not found")
				}
			},
			expectedStatus: http.StatusBadRequest,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "config 'nope' not found" {
					t.Errorf("Unexpected error message %q", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			var body any
			if tt.requestBody != nil {
				body = tt.requestBody
			}
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "old", Task: "SingleGoal", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
			{ID: "mid", Task: "Switches", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
			{ID: "new", Task: "SingleGoal", CreatedAt: now, LastAccessedAt: now},
		}
	}

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
	}{
		{"default sorts by accessed desc", "", []string{"new", "old", "mid"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limit", "?sort=created&limit=2", []string{"new", "mid"}, 3},
		{"task filter", "?task=SingleGoal&sort=created", []string{"new", "old"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					return sessions(), nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.wantTotal {
				t.Errorf("Expected total %d, got %d", tt.wantTotal, resp.Total)
			}
			if resp.Count != len(tt.wantIDs) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.wantIDs), resp.Count)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID, Episode: 3}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.SessionInfo
	parseResponse(t, w, &resp)
	if resp.ID != "ab12" || resp.Episode != 3 {
		t.Errorf("Unexpected session %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	mockService := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return service.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected ab12 to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Episode Tests

func TestAct(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Supported action",
			body: map[string]any{"action": "up", "reset": true},
			setupMock: func(m *MockGameService) {
				m.ActFunc = func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
					if action != "up" || !reset {
						t.Errorf("Expected action up with reset, got %s reset=%v", action, reset)
					}
					return &service.ActResult{
						Success: true,
						View:    &service.View{RewardSoFar: -0.1},
						Step:    &service.StepInfo{Idx: 1, AgentID: "agent", Action: "up", Reward: -0.1},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.ActResult
				parseResponse(t, w, &resp)
				if !resp.Success || resp.Step == nil || resp.Step.Action != "up" {
					t.Errorf("Unexpected result %+v", resp)
				}
			},
		},
		{
			name: "Unsupported action is not an error",
			body: map[string]any{"action": "fly"},
			setupMock: func(m *MockGameService) {
				m.ActFunc = func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
					return &service.ActResult{Success: false, View: &service.View{}, Message: "action \"fly\" is not supported"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.ActResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected success=false")
				}
			},
		},
		{
			name:           "Missing action",
			body:           map[string]any{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown session",
			body: map[string]any{"action": "up"},
			setupMock: func(m *MockGameService) {
				m.ActFunc = func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
					return nil, notFound(sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Service failure",
			body: map[string]any{"action": "up"},
			setupMock: func(m *MockGameService) {
				m.ActFunc = func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
					return nil, fmt.Errorf("reset session ab12: construction failed")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/act", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestBulkAct(t *testing.T) {
	mockService := &MockGameService{
		BulkActFunc: func(ctx context.Context, sessionID string, actions []string, reset bool) (*service.BulkActResult, error) {
			if len(actions) != 3 {
				t.Errorf("Expected 3 actions, got %d", len(actions))
			}
			return &service.BulkActResult{
				ActionsExecuted:  1,
				RequestedActions: 3,
				StopReasonCode:   service.StopUnsupported,
				StoppedOnAction:  2,
				View:             &service.View{},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-act", map[string]any{
		"actions": []string{"up", "fly", "down"},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.BulkActResult
	parseResponse(t, w, &resp)
	if resp.StopReasonCode != service.StopUnsupported || resp.StoppedOnAction != 2 {
		t.Errorf("Unexpected stop %q at %d", resp.StopReasonCode, resp.StoppedOnAction)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-act", "bad"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestReset(t *testing.T) {
	mockService := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*service.View, error) {
			if sessionID == "missing" {
				return nil, notFound(sessionID)
			}
			return &service.View{Episode: 2}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string        `json:"message"`
		View    *service.View `json:"view"`
	}
	parseResponse(t, w, &resp)
	if resp.View == nil || resp.View.Episode != 2 {
		t.Errorf("Expected episode 2 view, got %+v", resp.View)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/missing/reset", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestObserve(t *testing.T) {
	mockService := &MockGameService{
		ObserveFunc: func(ctx context.Context, sessionID string) (*service.View, error) {
			return &service.View{
				Observation:  engine.Observation{AgentID: "SingleGoalAgent"},
				LegalActions: []string{"down", "left", "pass", "right", "up"},
				Position:     &service.Position{X: 1, Y: 2},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/view", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.View
	parseResponse(t, w, &resp)
	if resp.AgentID != "SingleGoalAgent" || len(resp.LegalActions) != 5 {
		t.Errorf("Unexpected view %+v", resp)
	}
	if resp.Position == nil || resp.Position.X != 1 || resp.Position.Y != 2 {
		t.Errorf("Unexpected position %+v", resp.Position)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"custom", "?page=2&limit=5&order=asc&episode=3", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc", Episode: 3}},
		{"invalid values ignored", "?page=0&limit=-1&order=sideways&episode=x", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Entries: []service.HistoryEntry{{Episode: 1, Turn: 1, Action: "up"}}, Total: 1}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{Filename: "single_goal.json", ConfigID: "single_goal", Name: "Single Goal", Task: "SingleGoal"},
				{Filename: "switches.json", ConfigID: "switches", Name: "Switches", Task: "Switches"},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp []*service.ConfigInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 || resp[1].Task != "Switches" {
		t.Errorf("Unexpected configs %+v", resp)
	}
}

func TestGetConfig(t *testing.T) {
	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*tasks.Config, error) {
			if configName != "switches" {
				return nil, fmt.Errorf("configuration not found")
			}
			config := tasks.DefaultConfig()
			config.Name = "Switches"
			config.Task = "Switches"
			return &config, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/switches.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp tasks.Config
	parseResponse(t, w, &resp)
	if resp.Task != "Switches" {
		t.Errorf("Expected Switches task, got %s", resp.Task)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCreateConfig(t *testing.T) {
	var saved *tasks.Config
	mockService := &MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, config *tasks.Config) error {
			saved = config
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]any{
		"name": "tiny",
		"task": "SingleGoal",
		"map_size": map[string]int{"min_width": 4, "max_width": 4, "min_height": 4, "max_height": 4},
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if saved == nil || saved.TurnPenalty != tasks.DefaultConfig().TurnPenalty {
		t.Errorf("Expected omitted fields to keep defaults, got %+v", saved)
	}

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"task": "SingleGoal"}},
		{"unknown task", map[string]any{"name": "x", "task": "Chess"}},
		{"bad body", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestListTasksAndHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/tasks", nil))
	var resp struct {
		Tasks []string `json:"tasks"`
	}
	parseResponse(t, w, &resp)
	if len(resp.Tasks) != len(tasks.Names()) {
		t.Errorf("Expected %d tasks, got %d", len(tasks.Names()), len(resp.Tasks))
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		ActFunc: func(ctx context.Context, sessionID, action string, reset bool) (*service.ActResult, error) {
			return &service.ActResult{Success: true, View: &service.View{Episode: 1, RewardSoFar: -0.1}}, nil
		},
	}
	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	t.Run("missing session parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/ws?session=zz99", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("act pushes view", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
		conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for server.hub.ClientCount("ab12") == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/act", map[string]string{"action": "up"}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		if message.Event != websocket.EventViewUpdate || message.View == nil || message.View.RewardSoFar != -0.1 {
			t.Errorf("Unexpected message %+v", message)
		}
	})
}
