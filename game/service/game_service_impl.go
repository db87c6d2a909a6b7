package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/tasks"
)

// localViewRadius sizes the text view returned with every observation
const localViewRadius = 1

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new session running the named configuration
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *tasks.Config
	var err error
	configID := strings.TrimSuffix(configName, ".json")
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = "default"
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID

	return s.info(sess)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.info(sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	slices.SortFunc(sessions, func(a, b *Session) int { return a.CreatedAt.Compare(b.CreatedAt) })

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info, err := s.info(sess)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Act performs one action for the current agent
func (s *gameServiceImpl) Act(ctx context.Context, sessionID, action string, reset bool) (*ActResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		if err := resetSession(sess); err != nil {
			return nil, err
		}
		events = append(events, resetEvent(sess))
	}

	result := &ActResult{Events: events}
	if sess.Engine.IsOver() {
		result.Message = "episode is over; reset to play again"
	} else {
		step, ok := apply(sess, 1, action)
		result.Success = ok
		result.Events = append(result.Events, stepEvents(step, ok)...)
		if ok {
			result.Step = &step
			result.Message = fmt.Sprintf("%s: %s", step.AgentID, action)
		} else {
			result.Message = fmt.Sprintf("action %q is not supported; legal actions: %s",
				action, strings.Join(sess.Engine.LegalActions(), ", "))
		}
	}

	if result.View, err = newView(sess); err != nil {
		return nil, err
	}
	return result, nil
}

// BulkAct performs actions in order, stopping at the first unsupported
// action or at the end of the episode
func (s *gameServiceImpl) BulkAct(ctx context.Context, sessionID string, actions []string, reset bool) (*BulkActResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkActResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		if err := resetSession(sess); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, resetEvent(sess))
	}
	result.StartRewardSoFar = sess.Engine.RewardSoFar()

	// Limit actions to prevent abuse
	if len(actions) > MaxBulkActions {
		result.Truncated = true
		result.Limit = MaxBulkActions
		actions = actions[:MaxBulkActions]
	}

	for i, action := range actions {
		if sess.Engine.IsOver() {
			result.StoppedReason = "episode is over"
			result.StopReasonCode = StopEpisodeOver
			result.StoppedOnAction = i + 1
			break
		}

		step, ok := apply(sess, i+1, action)
		result.Events = append(result.Events, stepEvents(step, ok)...)
		if !ok {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d not supported: %s", i+1, action)
			result.StopReasonCode = StopUnsupported
			result.StoppedOnAction = i + 1
			break
		}
		result.ActionsExecuted++
		result.Steps = append(result.Steps, step)
	}

	result.EndRewardSoFar = sess.Engine.RewardSoFar()
	result.RewardDelta = result.EndRewardSoFar - result.StartRewardSoFar
	result.Over = sess.Engine.IsOver()
	if result.View, err = newView(sess); err != nil {
		return nil, err
	}
	return result, nil
}

// Reset starts a new episode
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := resetSession(sess); err != nil {
		return nil, err
	}
	return newView(sess)
}

// Observe returns the current agent's view. Observing may let autonomous
// agents take their pending turns, so it holds the write lock.
func (s *gameServiceImpl) Observe(ctx context.Context, sessionID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return newView(sess)
}

// GetHistory returns paginated action history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.History
	if opts.Episode > 0 {
		history = nil
		for _, e := range sess.History {
			if e.Episode == opts.Episode {
				history = append(history, e)
			}
		}
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var entries []HistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	return &HistoryResponse{
		Entries:     entries,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available task configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific task configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*tasks.Config, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a task configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *tasks.Config) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) info(sess *Session) (*SessionInfo, error) {
	view, err := newView(sess)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Task:           sess.Engine.TaskName(),
		Episode:        sess.Episode,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		View:           view,
		Config:         sess.Config,
	}, nil
}

// resetSession starts the next episode of sess
func resetSession(sess *Session) error {
	if err := sess.Engine.Reset(); err != nil {
		return fmt.Errorf("reset session %s: %w", sess.ID, err)
	}
	sess.Episode++
	sess.Turns = 0
	return nil
}

func resetEvent(sess *Session) GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   fmt.Sprintf("episode %d started", sess.Episode),
		Timestamp: time.Now(),
	}
}

// apply performs one action and records it in the session history. It
// reports false, leaving the episode untouched, when the current agent
// does not support the action.
func apply(sess *Session, idx int, action string) (StepInfo, bool) {
	g := sess.Engine
	agent := g.CurrentAgent()
	from, _ := position(g, agent)
	supported := slices.Contains(g.LegalActions(), action)

	step := StepInfo{Idx: idx, AgentID: agent, Action: action, From: from, To: from}
	if supported {
		g.Act(action)
		sess.Turns++
		step.To, _ = position(g, agent)
		step.Reward = g.Reward()
		step.Over = g.IsOver()
	}

	sess.History = append(sess.History, HistoryEntry{
		Episode:   sess.Episode,
		Turn:      sess.Turns,
		AgentID:   agent,
		Action:    action,
		Supported: supported,
		Reward:    step.Reward,
		Position:  step.To,
		Over:      step.Over,
		Timestamp: time.Now(),
	})
	return step, supported
}

func stepEvents(step StepInfo, supported bool) []GameEvent {
	now := time.Now()
	to := step.To
	if !supported {
		return []GameEvent{{
			Type:      "unsupported",
			Message:   fmt.Sprintf("%s cannot %s", step.AgentID, step.Action),
			Timestamp: now,
			Position:  &to,
		}}
	}
	events := []GameEvent{{
		Type:      "act",
		Message:   fmt.Sprintf("%s: %s (reward %.2f)", step.AgentID, step.Action, step.Reward),
		Timestamp: now,
		Position:  &to,
	}}
	if step.Over {
		events = append(events, GameEvent{
			Type:      "episode_over",
			Message:   "episode complete",
			Timestamp: now,
			Position:  &to,
		})
	}
	return events
}

func position(g *engine.GameEngine, agentID string) (Position, bool) {
	if agentID == "" {
		return Position{}, false
	}
	a, ok := g.Agent(agentID)
	if !ok {
		return Position{}, false
	}
	loc := a.Attrs().Loc
	return Position{X: loc.X, Y: loc.Y}, true
}

// newView observes the session and adds the driver aids
func newView(sess *Session) (*View, error) {
	g := sess.Engine
	obs, err := g.Observe()
	if err != nil {
		if errors.Is(err, engine.ErrNotReady) {
			return nil, fmt.Errorf("session %s has no episode: %w", sess.ID, err)
		}
		return nil, err
	}

	view := &View{
		Observation:      obs,
		Episode:          sess.Episode,
		Over:             g.IsOver(),
		RewardSoFar:      g.RewardSoFar(),
		ApproxBestReward: finite(g.ApproxBestReward()),
		LegalActions:     g.LegalActions(),
		Map:              RenderMap(g.World(), obs.AgentID),
	}
	if pos, ok := position(g, obs.AgentID); ok {
		view.Position = &pos
		view.LocalView = LocalView(g.World(), engine.Loc(pos.X, pos.Y), localViewRadius, obs.AgentID)
	}
	return view, nil
}

// finite clamps infinite estimates so views stay JSON-encodable
func finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	case math.IsInf(v, 1):
		return math.MaxFloat64
	}
	return v
}
