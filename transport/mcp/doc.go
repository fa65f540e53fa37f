// Package mcp exposes the room engine to agent tooling over the Model
// Context Protocol.
//
// The mcp package is a thin client: every tool call proxies to the REST
// API, so MCP, REST, and websocket clients all share one service path and
// one set of guarantees. Messages sent through MCP broadcast to the
// room's websocket group like any other send.
//
// Tools:
//   - create_room: create a named, time-boxed room
//   - list_rooms: list live rooms with their deadlines
//   - get_room: room details and remaining lifetime
//   - send_message: append + broadcast a message
//   - message_history: full chronological history of a room
//
// The server can be mounted on an HTTP endpoint (HandleMessage) or served
// over stdio; main.go wires both modes.
package mcp
