package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/gridworld/transport/mcp"
	"github.com/wricardo/gridworld/transport/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	config := `{"name": "Single", "task": "SingleGoal", "map_size": {"min_width": 5, "max_width": 5, "min_height": 5, "max_height": 5}}`
	if err := os.WriteFile(filepath.Join(dir, "single_goal.json"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"HOST", "PORT", "CONFIG_DIR", "DEBUG", "SESSION_TTL", "NGROK_ENABLED", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		s, err := loadSettings()
		if err != nil {
			t.Fatalf("loadSettings failed: %v", err)
		}
		if s.Addr() != "localhost:8080" {
			t.Errorf("Expected localhost:8080, got %s", s.Addr())
		}
		if s.ConfigDir != "configs" {
			t.Errorf("Expected configs, got %s", s.ConfigDir)
		}
		if s.SessionTTL != 24*time.Hour {
			t.Errorf("Expected 24h TTL, got %v", s.SessionTTL)
		}
		if s.Debug || s.NgrokEnabled {
			t.Error("Expected debug and ngrok off by default")
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("CONFIG_DIR", "/tmp/configs")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("NGROK_ENABLED", "true")
		t.Setenv("NGROK_AUTHTOKEN", "")
		t.Setenv("NGROK_AUTH_TOKEN", "secret")

		s, err := loadSettings()
		if err != nil {
			t.Fatalf("loadSettings failed: %v", err)
		}
		if s.Port != "9090" || s.ConfigDir != "/tmp/configs" {
			t.Errorf("Environment not applied: %+v", s)
		}
		if s.SessionTTL != 30*time.Minute {
			t.Errorf("Expected 30m TTL, got %v", s.SessionTTL)
		}
		if !s.NgrokEnabled || s.NgrokAuthToken != "secret" {
			t.Errorf("Expected ngrok settings from environment, got %+v", s)
		}
	})

	t.Run("bad value", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		if _, err := loadSettings(); err == nil {
			t.Error("Expected error for bad duration")
		}
	})
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := Settings{ConfigDir: writeConfigDir(t), SessionTTL: time.Hour}
	gameService, err := initializeServices(ctx, settings, quietLogger())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	info, err := gameService.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.Task != "SingleGoal" {
		t.Errorf("Expected SingleGoal default, got %s", info.Task)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	settings := Settings{ConfigDir: "/non/existent/path", SessionTTL: time.Hour}
	if _, err := initializeServices(context.Background(), settings, quietLogger()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("ping", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"jsonrpc":"2.0"`) {
			t.Errorf("Expected JSON-RPC response, got %s", rec.Body.String())
		}
	})

	t.Run("tools list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))
		for _, tool := range []string{"create_session", "act", "describe_cell"} {
			if !strings.Contains(rec.Body.String(), `"`+tool+`"`) {
				t.Errorf("Expected tool %s in %s", tool, rec.Body.String())
			}
		}
	})
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := quietLogger()
	gameService, err := initializeServices(ctx, Settings{ConfigDir: writeConfigDir(t), SessionTTL: time.Hour}, logger)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	srv := httptest.NewServer(newRouter(gameService, hub, logger, "http://127.0.0.1:1"))
	defer srv.Close()

	if !apiAvailable(srv.URL) {
		t.Fatal("Expected health check to pass")
	}
	if apiAvailable("http://127.0.0.1:1") {
		t.Error("Expected closed port to be unavailable")
	}

	resp, err := http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	if err != nil {
		t.Fatalf("POST /mcp failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /mcp, got %d", resp.StatusCode)
	}
}
