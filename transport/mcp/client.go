package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/service"
)

const (
	serverName    = "Grid World"
	serverVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid World - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session runs one task: a small grid where your agent (@) must reach a
goal state. Every turn costs a small penalty, so shorter solutions score
higher. Observe first, then act with one of the legal actions listed.

AVAILABLE TOOLS:
- create_session: Start a session for a task configuration
- observe: Current view (map, legal actions, reward so far)
- act: One action - requires intent explanation
- bulk_act: Several actions at once - requires intent explanation
- reset_episode: Start a new episode in the same session
- action_history: View past actions
- get_session / list_sessions: Session details
- list_configs / list_tasks: What can be played
- task_instructions: Rules, legend and rewards
- describe_cell: Everything on one cell

NOTE: The 'intent' parameter on act/bulk_act serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new session with optional config selection"),
		mcp.WithString("config_id", mcp.Description("Config to use (see list_configs); empty selects the default")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionArg(),
	), c.handleGetSession)

	// Episode operations
	c.mcpServer.AddTool(mcp.NewTool("observe",
		mcp.WithDescription("Get the current view of the acting agent"),
		sessionArg(),
	), c.handleObserve)

	c.mcpServer.AddTool(mcp.NewTool("act",
		mcp.WithDescription("Take one action with the acting agent. Unsupported actions are ignored and take no turn."),
		sessionArg(),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action name, one of the view's legal actions")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this action (serves as a rubber duck to help explain your reasoning)")),
		mcp.WithBoolean("reset", mcp.Description("Start a new episode before acting")),
	), c.handleAct)

	c.mcpServer.AddTool(mcp.NewTool("bulk_act",
		mcp.WithDescription(fmt.Sprintf("Take up to %d actions in sequence, stopping at the first unsupported action or when the episode ends", service.MaxBulkActions)),
		sessionArg(),
		mcp.WithArray("actions", mcp.Required(), mcp.Description("Action names"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)")),
		mcp.WithBoolean("reset", mcp.Description("Start a new episode before acting")),
	), c.handleBulkAct)

	c.mcpServer.AddTool(mcp.NewTool("reset_episode",
		mcp.WithDescription("Start a new episode of the session's task"),
		sessionArg(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("action_history",
		mcp.WithDescription("Get action history for a session"),
		sessionArg(),
		mcp.WithNumber("page", mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Description("Items per page")),
		mcp.WithNumber("episode", mcp.Description("Only this episode (1-based)")),
	), c.handleHistory)

	// Catalog
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available task configurations"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the names of the registered tasks"),
	), c.handleListTasks)

	c.mcpServer.AddTool(mcp.NewTool("task_instructions",
		mcp.WithDescription("Get rules, map legend and reward structure"),
	), c.handleInstructions)

	c.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("List every entity on one cell with its features. Useful to tell a goal's color or a switch's state."),
		sessionArg(),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("X coordinate (column), 0 is the left edge")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Y coordinate (row), 0 is the bottom edge")),
	), c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Task: %s, Episode: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Task, s.Episode, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleObserve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.View
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/view"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatView(&view)), nil
}

type actInput struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Intent    string `json:"intent"`
	Reset     bool   `json:"reset"`
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input actInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid act arguments", err), nil
	}
	if input.SessionID == "" || input.Action == "" {
		return mcp.NewToolResultError("session_id and action are required"), nil
	}

	body := map[string]any{
		"action": input.Action,
		"reset":  input.Reset,
	}

	var result service.ActResult
	if err := c.apiCall(ctx, "POST", sessionPath(input.SessionID, "/act"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActResult(&result)), nil
}

type bulkActInput struct {
	SessionID string   `json:"session_id"`
	Actions   []string `json:"actions"`
	Intent    string   `json:"intent"`
	Reset     bool     `json:"reset"`
}

func (c *Client) handleBulkAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input bulkActInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid bulk_act arguments", err), nil
	}
	if input.SessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	body := map[string]any{
		"actions": input.Actions,
		"reset":   input.Reset,
	}

	var result service.BulkActResult
	if err := c.apiCall(ctx, "POST", sessionPath(input.SessionID, "/bulk-act"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkActResult(input.SessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string        `json:"message"`
		View    *service.View `json:"view"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatView(response.View))), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	for _, key := range []string{"page", "limit", "episode"} {
		if v := request.GetInt(key, 0); v > 0 {
			params.Set(key, strconv.Itoa(v))
		}
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		ms := config.MapSize
		fmt.Fprintf(&b, "• %s (config_id: %s, task: %s)\n  %s\n  Map: %d-%d x %d-%d\n\n",
			config.Name, config.ConfigID, config.Task, config.Description,
			ms.MinWidth, ms.MaxWidth, ms.MinHeight, ms.MaxHeight)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Tasks []string `json:"tasks"`
	}
	if err := c.apiCall(ctx, "GET", "/api/tasks", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Tasks: " + strings.Join(response.Tasks, ", ")), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Grid World - Instructions

OBJECTIVE:
Each session runs a task on a small grid. The episode ends when the task's
goal state is reached. The view shows the reward collected so far and an
estimate of the best reward reachable from the start of the episode.

COORDINATES:
x grows to the right and y grows upward. (0,0) is the bottom-left cell.
"up" adds 1 to y. The map in a view is printed top row first.

MAP LEGEND:
@ you (the acting agent)    A another agent
# block (impassable)        P pushable block
D closed door               d open door
S switch                    G goal
~ water (penalty)           * breadcrumb
. empty

ACTIONS:
up / down / left / right   move one cell; moving into a pushable pushes it
pass                       do nothing for one turn
toggle_switch              cycle the state of a switch on your cell
Only the legal actions listed in the view are accepted. Anything else is
ignored and takes no turn.

REWARDS:
• Every turn costs the turn penalty (0.1 by default)
• Stepping on water costs the water penalty
• Reaching the right goal pays the goal reward; a wrong goal may cost

TASKS:
SingleGoal          reach the goal
MultiGoals          visit the goals in the order the side info lists them
ConditionedGoals    the switch state selects which goal to visit
Exclusion           visit the listed goals and avoid the excluded ones
Goto / GotoHidden   go to the cell named in the side info
PushBlock           push the block onto the switch
PushBlockCardinal   push the block to the named map edge
Switches            set every switch to the same state
LightKey            set the switch to open the door, then reach the goal
BlockedDoor         push the block out of the doorway, then reach the goal

TIPS:
• Read the side info: it names colors, targets and directions
• Use describe_cell to inspect goals and switches
• Prefer bulk_act for straight paths, act near obstacles`

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, errX := request.RequireInt("x")
	y, errY := request.RequireInt("y")
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var view service.View
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/view"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state := view.State
	if x < 0 || y < 0 || x >= state.Width || y >= state.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Map size is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&view, x, y)), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nTask: %s\nEpisode: %d\n", session.ID, session.ConfigName, session.Task, session.Episode)
	if session.View != nil {
		b.WriteString("\n")
		b.WriteString(formatView(session.View))
	}
	return b.String()
}

func formatView(view *service.View) string {
	if view == nil {
		return "(no view)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s (%dx%d), Episode: %d\n", view.State.Task, view.State.Width, view.State.Height, view.Episode)
	if view.Over {
		b.WriteString("🏁 EPISODE OVER - reset to play again\n")
	}
	if view.AgentID != "" {
		fmt.Fprintf(&b, "Agent: %s", view.AgentID)
		if view.Position != nil {
			fmt.Fprintf(&b, " at (%d,%d)", view.Position.X, view.Position.Y)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Reward: %.2f so far (last %.2f, best estimate %.2f)\n", view.RewardSoFar, view.Reward, view.ApproxBestReward)
	if len(view.LegalActions) > 0 {
		fmt.Fprintf(&b, "Legal actions: %s\n", strings.Join(view.LegalActions, ", "))
	}
	if info := formatSideInfo(view.State.SideInfo); info != "" {
		fmt.Fprintf(&b, "Side info: %s\n", info)
	}

	if len(view.Map) > 0 {
		b.WriteString("\nMap (top row is y=")
		b.WriteString(strconv.Itoa(len(view.Map) - 1))
		b.WriteString("):\n")
		for _, row := range view.Map {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	if len(view.LocalView) > 0 {
		b.WriteString("\nAround you:\n")
		for _, row := range view.LocalView {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatSideInfo(info [][]string) string {
	parts := make([]string, 0, len(info))
	for _, line := range info {
		if len(line) > 0 {
			parts = append(parts, strings.Join(line, " "))
		}
	}
	return strings.Join(parts, " | ")
}

func formatActResult(result *service.ActResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Action taken")
	} else {
		b.WriteString("✗ Action not taken")
	}
	if result.Message != "" {
		b.WriteString(": ")
		b.WriteString(result.Message)
	}
	b.WriteString("\n")

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "%s (%d,%d)->(%d,%d) reward %.2f\n", s.Action, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Reward)
	}
	b.WriteString("\n")
	b.WriteString(formatView(result.View))
	return b.String()
}

func formatBulkActResult(sessionID string, result *service.BulkActResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d actions", sessionID, result.ActionsExecuted, result.RequestedActions)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	switch result.StopReasonCode {
	case service.StopUnsupported:
		fmt.Fprintf(&b, "⛔ Stopped at action %d: %s\n", result.StoppedOnAction, result.StoppedReason)
	case service.StopEpisodeOver:
		fmt.Fprintf(&b, "🏁 Stopped at action %d: episode is over\n", result.StoppedOnAction)
	}
	fmt.Fprintf(&b, "Reward: %.2f -> %.2f (Δ %.2f)\n", result.StartRewardSoFar, result.EndRewardSoFar, result.RewardDelta)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatView(result.View))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	line := fmt.Sprintf("%2d. %-14s (%d,%d)->(%d,%d) %+.2f", s.Idx, s.Action, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Reward)
	if s.Over {
		line += " [over]"
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d, Total: %d):\n\n", history.Page, history.TotalPages, history.Total)
	for _, e := range history.Entries {
		status := "✓"
		if !e.Supported {
			status = "✗"
		}
		fmt.Fprintf(&b, "%s ep %d turn %d: %s %s at (%d,%d) reward %.2f",
			status, e.Episode, e.Turn, e.AgentID, e.Action, e.Position.X, e.Position.Y, e.Reward)
		if e.Over {
			b.WriteString(" [over]")
		}
		b.WriteString("\n")
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore entries on page %d\n", history.Page+1)
	}
	return b.String()
}

// describeCell lists the entities on (x, y), most important first
func describeCell(view *service.View, x, y int) string {
	var here []engine.EntityState
	for _, e := range view.State.Entities {
		if e.X == x && e.Y == y {
			here = append(here, e)
		}
	}
	sort.SliceStable(here, func(i, j int) bool { return here[i].Priority > here[j].Priority })

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d):\n", x, y)
	if len(here) == 0 {
		b.WriteString("  empty\n")
		return b.String()
	}
	for _, e := range here {
		traits := []string{}
		if e.Passable {
			traits = append(traits, "passable")
		} else {
			traits = append(traits, "blocking")
		}
		if !e.Visible {
			traits = append(traits, "hidden")
		}
		if e.ID == view.AgentID {
			traits = append(traits, "you")
		}
		fmt.Fprintf(&b, "  %s [%s] (%s) features: %s\n", e.Type, e.ID, strings.Join(traits, ", "), strings.Join(e.Features, " "))
	}
	return b.String()
}
