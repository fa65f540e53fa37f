package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestHandlersRejectMissingArguments(t *testing.T) {
	// The base URL is never contacted; argument validation fails first.
	c := NewClient("http://127.0.0.1:0")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"create_room":     c.handleCreateRoom,
		"get_room":        c.handleGetRoom,
		"send_message":    c.handleSendMessage,
		"message_history": c.handleMessageHistory,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), mcp.CallToolRequest{})
			if err != nil {
				t.Fatalf("Handler returned a protocol error: %v", err)
			}
			if result == nil || !result.IsError {
				t.Error("Expected a tool error for a request without arguments")
			}
		})
	}
}

func TestHandlersRejectNonObjectArguments(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")

	request := mcp.CallToolRequest{}
	request.Params.Arguments = []interface{}{"room_id"}

	result, err := c.handleGetRoom(context.Background(), request)
	if err != nil {
		t.Fatalf("Handler returned a protocol error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("Expected a tool error for non-object arguments")
	}
}
