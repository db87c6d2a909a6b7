// Command gridworld serves grid-world task sessions.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and an optional .env file); flags
// override them. An ngrok tunnel can expose the server during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridworld/api"
	"github.com/wricardo/gridworld/game/config"
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/service"
	"github.com/wricardo/gridworld/game/session"
	"github.com/wricardo/gridworld/game/tasks"
	"github.com/wricardo/gridworld/game/vocab"
	"github.com/wricardo/gridworld/transport/mcp"
	"github.com/wricardo/gridworld/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid World Server"
)

// Settings control how the server starts and which services are enabled
type Settings struct {
	Host       string        `env:"HOST" envDefault:"localhost"`
	Port       string        `env:"PORT" envDefault:"8080"`
	ConfigDir  string        `env:"CONFIG_DIR" envDefault:"configs"`
	Debug      bool          `env:"DEBUG"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`

	// APIURL is the server the mcp mode tries before starting its own
	APIURL string `env:"GRIDWORLD_API_URL" envDefault:"http://localhost:8080"`
}

// Addr is the listen address
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// loadSettings reads settings from the environment
func loadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if s.NgrokAuthToken == "" {
		s.NgrokAuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	return s, nil
}

// applyFlags overrides settings with the flags given on the command line
func applyFlags(s *Settings, cmd *cli.Command) {
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = cmd.String("port")
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("debug") {
		s.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("ngrok") {
		s.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		s.NgrokAuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.NgrokDomain = cmd.String("ngrok-domain")
	}
}

// newLogger writes to stderr so the mcp mode keeps stdout for the protocol
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("error loading .env file", "error", err)
		}
	}

	// Root flags are inherited by the subcommands
	flags := []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
		&cli.StringFlag{Name: "port", Usage: "HTTP server port (PORT)"},
		&cli.StringFlag{Name: "config-dir", Usage: "directory containing task configurations (CONFIG_DIR)"},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging (DEBUG)"},
		&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel (NGROK_ENABLED)"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (NGROK_AUTHTOKEN)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (NGROK_DOMAIN)"},
	}

	cmd := &cli.Command{
		Name:    "gridworld",
		Usage:   AppName,
		Version: Version,
		Flags:   flags,
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run MCP stdio server, starting an internal HTTP server if needed",
				Action:  runMCP,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

// setup reads settings and builds the logger and game service
func setup(ctx context.Context, cmd *cli.Command) (Settings, *slog.Logger, service.GameService, error) {
	settings, err := loadSettings()
	if err != nil {
		return settings, nil, nil, err
	}
	applyFlags(&settings, cmd)

	logger := newLogger(settings.Debug)
	logger.Info("starting", "app", AppName, "version", Version, "mode", cmd.Name)

	tasks.RegisterAll(vocab.Default)

	gameService, err := initializeServices(ctx, settings, logger)
	if err != nil {
		return settings, logger, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return settings, logger, gameService, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, logger, gameService, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	return runHTTPServer(ctx, settings, logger, gameService)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	settings, logger, gameService, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	return runStdioMCPWithInternalServer(ctx, settings, logger, gameService)
}

// initializeServices wires session/config managers and the game service.
// It also starts a background cleanup routine that stops with ctx.
func initializeServices(ctx context.Context, settings Settings, logger *slog.Logger) (service.GameService, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(engine.WithLogger(logger))
	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, settings.SessionTTL, logger)

	return gameService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// mcpHandler answers single MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp
func newRouter(gameService service.GameService, hub *websocket.Hub, logger *slog.Logger, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub, logger))
	mainRouter.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// runHTTPServer serves until ctx is cancelled. If ngrok is enabled it also
// serves the same router through a public tunnel.
func runHTTPServer(ctx context.Context, settings Settings, logger *slog.Logger, gameService service.GameService) error {
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	addr := settings.Addr()
	mainRouter := newRouter(gameService, hub, logger, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, settings, logger, mainRouter)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, settings Settings, logger *slog.Logger, handler http.Handler) {
	if settings.NgrokAuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
		logger.Info("using custom ngrok domain", "domain", settings.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.NgrokAuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Error("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// apiAvailable reports whether a server answers health checks at baseURL
func apiAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses the API
// at settings.APIURL when one answers; otherwise it starts an internal HTTP
// API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, settings Settings, logger *slog.Logger, gameService service.GameService) error {
	baseURL := settings.APIURL
	logger.Info("checking for external API server", "url", baseURL)

	if apiAvailable(baseURL) {
		logger.Info("external API server found, using it for MCP", "url", baseURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		logger.Info("starting internal HTTP server for MCP stdio", "url", baseURL)

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
