package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/emberchat/emberchat/api"
	"github.com/emberchat/emberchat/chat/room"
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
		baseURL: baseURL,
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
		"Emberchat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Emberchat - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Emberchat hosts ephemeral chat rooms. A room is created with a name and a
lifetime in minutes; when the lifetime elapses the room and every message
in it are deleted. There is no way to extend or resurrect a room.

AVAILABLE TOOLS:
- create_room: Create a room with a name and duration in minutes
- list_rooms: List live rooms
- get_room: Get a room's details and deadline
- send_message: Send a message into a room (broadcast to everyone joined)
- message_history: Read a room's full message history

All timestamps are epoch milliseconds.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Room management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new time-boxed chat room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the room",
				},
				"duration_minutes": map[string]interface{}{
					"type":        "integer",
					"description": "Room lifetime in minutes; the room is deleted when it elapses",
				},
			},
			Required: []string{"name", "duration_minutes"},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all live chat rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to retrieve",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	// Messages
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send a message into a room; it is broadcast to everyone joined",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Message text",
				},
				"sender": map[string]interface{}{
					"type":        "string",
					"description": "Display name to attribute the message to",
				},
			},
			Required: []string{"room_id", "content", "sender"},
		},
	}, c.handleSendMessage)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "message_history",
		Description: "Get the full chronological message history of a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleMessageHistory)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

// toolArgs extracts the request's argument object. Requests without one
// yield a tool error rather than a panic.
func toolArgs(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	name, _ := args["name"].(string)
	duration, _ := args["duration_minutes"].(float64)

	body := map[string]interface{}{
		"name":            name,
		"durationMinutes": int(duration),
	}

	var info api.RoomInfo
	err := c.apiCall("POST", "/api/rooms", body, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room: %s\nName: %s\nExpires: %s\nJoin path: %s\n",
		info.ID, info.Name, formatMillis(info.ExpiresAt), info.JoinPath)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int            `json:"count"`
		Rooms []api.RoomInfo `json:"rooms"`
	}

	err := c.apiCall("GET", "/api/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		result += fmt.Sprintf("- %s %q (%d messages, expires %s)\n",
			r.ID, r.Name, r.MessageCount, formatMillis(r.ExpiresAt))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	roomID, _ := args["room_id"].(string)

	var info api.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&info)), nil
}

func (c *Client) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	roomID, _ := args["room_id"].(string)
	content, _ := args["content"].(string)
	sender, _ := args["sender"].(string)

	body := map[string]string{
		"content": content,
		"sender":  sender,
	}

	var msg room.Message
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/messages", roomID), body, &msg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Sent message %s at %s", msg.ID, formatMillis(msg.Timestamp))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMessageHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	roomID, _ := args["room_id"].(string)

	var response struct {
		Count    int            `json:"count"`
		Messages []room.Message `json:"messages"`
	}

	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s/messages", roomID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Messages (%d):\n\n", response.Count)
	for _, m := range response.Messages {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", formatMillis(m.Timestamp), m.Sender, m.Content)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// Formatting helpers

func formatRoomInfo(info *api.RoomInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Room: %s\n", info.ID)
	fmt.Fprintf(&sb, "Name: %s\n", info.Name)
	fmt.Fprintf(&sb, "Created: %s\n", formatMillis(info.CreatedAt))
	fmt.Fprintf(&sb, "Expires: %s\n", formatMillis(info.ExpiresAt))
	fmt.Fprintf(&sb, "Messages: %d\n", info.MessageCount)
	fmt.Fprintf(&sb, "Join path: %s\n", info.JoinPath)
	return sb.String()
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("15:04:05")
}
