package service

import (
	"time"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
)

// MaxBulkActions caps the actions accepted by one BulkAct call
const MaxBulkActions = 50

// Stop reason codes of BulkActResult
const (
	StopUnsupported = "unsupported_action"
	StopEpisodeOver = "episode_over"
)

// Position is a grid cell
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SessionInfo provides information about a session
type SessionInfo struct {
	ID             string        `json:"id"`
	ConfigName     string        `json:"config_name"`
	Task           string        `json:"task"`
	Episode        int           `json:"episode"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	View           *View         `json:"view"`
	Config         *tasks.Config `json:"config"`
}

// View is an observation enriched with driver aids
type View struct {
	engine.Observation
	Episode          int       `json:"episode"`
	Over             bool      `json:"over"`
	RewardSoFar      float64   `json:"reward_so_far"`
	ApproxBestReward float64   `json:"approx_best_reward"`
	LegalActions     []string  `json:"legal_actions"`
	Position         *Position `json:"position,omitempty"`
	LocalView        []string  `json:"local_view,omitempty"`
	// Map is the whole grid, top row first
	Map []string `json:"map"`
}

// ActResult contains the result of one action
type ActResult struct {
	// Success is false when the current agent does not support the action;
	// such actions are ignored and take no turn
	Success bool        `json:"success"`
	View    *View       `json:"view"`
	Message string      `json:"message"`
	Events  []GameEvent `json:"events,omitempty"`
	Step    *StepInfo   `json:"step,omitempty"`
}

// BulkActResult contains the result of a sequence of actions
type BulkActResult struct {
	ActionsExecuted  int         `json:"actions_executed"`
	RequestedActions int         `json:"requested_actions"`
	Success          bool        `json:"success"`
	View             *View       `json:"view"`
	Events           []GameEvent `json:"events"`
	StoppedReason    string      `json:"stopped_reason,omitempty"`
	StopReasonCode   string      `json:"stop_reason_code,omitempty"`  // unsupported_action|episode_over
	StoppedOnAction  int         `json:"stopped_on_action,omitempty"` // 1-based
	Truncated        bool        `json:"truncated,omitempty"`
	Limit            int         `json:"limit,omitempty"`

	StartRewardSoFar float64 `json:"start_reward_so_far"`
	EndRewardSoFar   float64 `json:"end_reward_so_far"`
	RewardDelta      float64 `json:"reward_delta"`

	Steps []StepInfo `json:"steps,omitempty"`
	Over  bool       `json:"over"`
}

// StepInfo is a compact record of one executed action
type StepInfo struct {
	Idx     int      `json:"idx"`
	AgentID string   `json:"agent_id"`
	Action  string   `json:"action"`
	From    Position `json:"from"`
	To      Position `json:"to"`
	Reward  float64  `json:"reward"`
	Over    bool     `json:"over,omitempty"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string    `json:"type"` // "reset", "act", "unsupported", "episode_over"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Position  *Position `json:"position,omitempty"`
}

// HistoryEntry records one action taken in a session
type HistoryEntry struct {
	Episode   int       `json:"episode"`
	Turn      int       `json:"turn"`
	AgentID   string    `json:"agent_id"`
	Action    string    `json:"action"`
	Supported bool      `json:"supported"`
	Reward    float64   `json:"reward"`
	Position  Position  `json:"position"`
	Over      bool      `json:"over"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Order   string `json:"order"`   // "asc" or "desc"
	Episode int    `json:"episode"` // 0 means every episode
}

// HistoryResponse contains paginated history
type HistoryResponse struct {
	Entries     []HistoryEntry `json:"entries"`
	Total       int            `json:"total"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a task configuration
type ConfigInfo struct {
	Filename    string         `json:"filename"`
	ConfigID    string         `json:"config_id"` // The identifier to use for session creation
	Name        string         `json:"name"`      // Display name
	Description string         `json:"description"`
	Task        string         `json:"task"`
	MapSize     engine.MapSize `json:"map_size"`
}
