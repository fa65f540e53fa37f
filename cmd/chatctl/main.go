// Command chatctl is a small operator CLI for an emberchat server.
//
// It drives the REST API for room management and message sending, and
// speaks the websocket protocol for live tailing:
//
//	chatctl create --name standup --duration 15
//	chatctl rooms
//	chatctl send --room <id> --sender ana "hello"
//	chatctl history --room <id>
//	chatctl watch --room <id>
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/emberchat/emberchat/api"
	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/chat/room"
)

func main() {
	cmd := &cli.Command{
		Name:  "chatctl",
		Usage: "manage ephemeral chat rooms on an emberchat server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "http://localhost:8080",
				Usage: "base URL of the emberchat server",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a new time-boxed room",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "room display name"},
					&cli.IntFlag{Name: "duration", Value: 10, Usage: "room lifetime in minutes"},
				},
				Action: runCreate,
			},
			{
				Name:   "rooms",
				Usage:  "list live rooms",
				Action: runRooms,
			},
			{
				Name:      "send",
				Usage:     "send a message into a room",
				ArgsUsage: "<message text>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "room", Required: true, Usage: "room id"},
					&cli.StringFlag{Name: "sender", Value: "chatctl", Usage: "display name to send as"},
				},
				Action: runSend,
			},
			{
				Name:  "history",
				Usage: "print a room's full message history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "room", Required: true, Usage: "room id"},
				},
				Action: runHistory,
			},
			{
				Name:  "watch",
				Usage: "tail a room live until it expires",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "room", Required: true, Usage: "room id"},
				},
				Action: runWatch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// apiCall performs one JSON round trip against the server.
func apiCall(base, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, base+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
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
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func runCreate(ctx context.Context, cmd *cli.Command) error {
	body := map[string]interface{}{
		"name":            cmd.String("name"),
		"durationMinutes": cmd.Int("duration"),
	}

	var info api.RoomInfo
	if err := apiCall(cmd.String("server"), "POST", "/api/rooms", body, &info); err != nil {
		return err
	}

	fmt.Printf("Room created: %s\n", info.ID)
	fmt.Printf("Expires: %s\n", formatMillis(info.ExpiresAt))
	fmt.Printf("Join path: %s\n", info.JoinPath)
	return nil
}

func runRooms(ctx context.Context, cmd *cli.Command) error {
	var response struct {
		Count int            `json:"count"`
		Rooms []api.RoomInfo `json:"rooms"`
	}
	if err := apiCall(cmd.String("server"), "GET", "/api/rooms", nil, &response); err != nil {
		return err
	}

	fmt.Printf("Live rooms: %d\n", response.Count)
	for _, r := range response.Rooms {
		fmt.Printf("  %s  %-20q  %3d messages  expires %s\n",
			r.ID, r.Name, r.MessageCount, formatMillis(r.ExpiresAt))
	}
	return nil
}

func runSend(ctx context.Context, cmd *cli.Command) error {
	content := strings.Join(cmd.Args().Slice(), " ")

	body := map[string]string{
		"content": content,
		"sender":  cmd.String("sender"),
	}

	var msg room.Message
	path := fmt.Sprintf("/api/rooms/%s/messages", cmd.String("room"))
	if err := apiCall(cmd.String("server"), "POST", path, body, &msg); err != nil {
		return err
	}

	fmt.Printf("Sent %s\n", msg.ID)
	return nil
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	var response struct {
		Count    int            `json:"count"`
		Messages []room.Message `json:"messages"`
	}
	path := fmt.Sprintf("/api/rooms/%s/messages", cmd.String("room"))
	if err := apiCall(cmd.String("server"), "GET", path, nil, &response); err != nil {
		return err
	}

	for _, m := range response.Messages {
		fmt.Printf("[%s] %s: %s\n", formatMillis(m.Timestamp), m.Sender, m.Content)
	}
	return nil
}

// runWatch joins the room over the websocket protocol and prints events
// until the room expires or the user interrupts.
func runWatch(ctx context.Context, cmd *cli.Command) error {
	wsURL := strings.Replace(cmd.String("server"), "http", "ws", 1) + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", wsURL, err)
	}
	defer conn.Close()

	join := event.Event{
		Type: event.TypeJoinRoom,
		Data: event.JoinRoomData{RoomID: cmd.String("room")},
	}
	if err := conn.WriteJSON(join); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	done := make(chan error, 1)
	go func() {
		for {
			var env event.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				done <- err
				return
			}
			if finished := printEvent(&env); finished {
				done <- nil
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

// printEvent renders one server frame; it reports true once the room is
// gone and the watch should end.
func printEvent(env *event.Envelope) bool {
	switch env.Type {
	case event.TypeRoomJoined:
		var data event.RoomJoinedData
		if env.Decode(&data) == nil {
			fmt.Printf("Joined %q, expires %s\n", data.Name, formatMillis(data.ExpiresAt))
		}

	case event.TypeMessageHistory:
		var data event.MessageHistoryData
		if env.Decode(&data) == nil {
			for _, m := range data.Messages {
				fmt.Printf("[%s] %s: %s\n", formatMillis(m.Timestamp), m.Sender, m.Content)
			}
		}

	case event.TypeNewMessage:
		var data event.NewMessageData
		if env.Decode(&data) == nil {
			m := data.Message
			fmt.Printf("[%s] %s: %s\n", formatMillis(m.Timestamp), m.Sender, m.Content)
		}

	case event.TypeRoomExpired:
		fmt.Println("Room expired.")
		return true

	case event.TypeError:
		var data event.ErrorData
		if env.Decode(&data) == nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", data.Message)
		}
	}
	return false
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("15:04:05")
}
