package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
)

// ErrSessionNotFound is returned by a SessionManager for unknown ids
var ErrSessionNotFound = errors.New("session not found")

// GameService defines all episode operations exposed to the transports
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Episode Operations
	Act(ctx context.Context, sessionID, action string, reset bool) (*ActResult, error)
	BulkAct(ctx context.Context, sessionID string, actions []string, reset bool) (*BulkActResult, error)
	Reset(ctx context.Context, sessionID string) (*View, error)

	// Episode State
	Observe(ctx context.Context, sessionID string) (*View, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*tasks.Config, error)
	SaveConfig(ctx context.Context, configName string, config *tasks.Config) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *tasks.Config) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *tasks.Config) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles task configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*tasks.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *tasks.Config
	SaveConfig(name string, config *tasks.Config) error
}

// Session is one running engine plus the actions taken in it
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *tasks.Config
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Episode counts resets; the first episode is 1. Turns counts the
	// actions taken in the current episode.
	Episode int
	Turns   int
	History []HistoryEntry
}
