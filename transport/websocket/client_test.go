package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/chat/service"
	"github.com/emberchat/emberchat/chat/store"
)

// fakeClock is a settable clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestServer(t *testing.T) (service.ChatService, *fakeClock, *Hub, *httptest.Server) {
	t.Helper()

	clock := newFakeClock(time.UnixMilli(1_700_000_000_000))
	hub := NewHub()
	svc := service.New(store.NewWithClock(clock.Now), hub)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(svc, hub, w, r)
	}))
	t.Cleanup(ts.Close)

	return svc, clock, hub, ts
}

// waitForGroupSize polls until the room's group reaches the wanted size.
func waitForGroupSize(t *testing.T, hub *Hub, roomID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GroupSize(roomID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Group %s never reached size %d, at %d", roomID, want, hub.GroupSize(roomID))
		}
		time.Sleep(time.Millisecond)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, evt event.Event) {
	t.Helper()
	if err := conn.WriteJSON(evt); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) event.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env event.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return env
}

func recvType(t *testing.T, conn *websocket.Conn, want event.Type) event.Envelope {
	t.Helper()

	env := recv(t, conn)
	if env.Type != want {
		t.Fatalf("Expected event %q, got %q", want, env.Type)
	}
	return env
}

func TestCreateAndJoinOverWire(t *testing.T) {
	_, _, _, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, event.Event{
		Type: event.TypeCreateRoom,
		Data: event.CreateRoomData{Name: "standup", DurationMinutes: 10},
	})
	env := recvType(t, conn, event.TypeRoomCreated)

	var created event.RoomCreatedData
	if err := env.Decode(&created); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if created.ID == "" || created.ExpiresAt == 0 {
		t.Fatalf("Unexpected roomCreated payload: %+v", created)
	}

	// Creating does not join; joining is an explicit second step.
	send(t, conn, event.Event{
		Type: event.TypeJoinRoom,
		Data: event.JoinRoomData{RoomID: created.ID},
	})
	recvType(t, conn, event.TypeRoomJoined)

	env = recvType(t, conn, event.TypeMessageHistory)
	var history event.MessageHistoryData
	if err := env.Decode(&history); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(history.Messages) != 0 {
		t.Errorf("Expected empty history for a fresh room, got %d messages", len(history.Messages))
	}
}

func TestBroadcastReachesWholeGroup(t *testing.T) {
	svc, _, _, ts := newTestServer(t)

	created, err := svc.CreateRoom("standup", 10)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	join := event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: created.ID}}

	ana := dial(t, ts)
	send(t, ana, join)
	recvType(t, ana, event.TypeRoomJoined)
	recvType(t, ana, event.TypeMessageHistory)

	bo := dial(t, ts)
	send(t, bo, join)
	recvType(t, bo, event.TypeRoomJoined)
	recvType(t, bo, event.TypeMessageHistory)

	send(t, ana, event.Event{
		Type: event.TypeSendMessage,
		Data: event.SendMessageData{RoomID: created.ID, Content: "hello", Sender: "ana"},
	})

	// Both members get the broadcast, the sender included.
	for _, conn := range []*websocket.Conn{ana, bo} {
		env := recvType(t, conn, event.TypeNewMessage)
		var data event.NewMessageData
		if err := env.Decode(&data); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if data.Message.Content != "hello" || data.Message.Sender != "ana" {
			t.Errorf("Unexpected message: %+v", data.Message)
		}
	}
}

func TestRoomExpiryOverWire(t *testing.T) {
	svc, clock, _, ts := newTestServer(t)

	created, err := svc.CreateRoom("doomed", 1)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	conn := dial(t, ts)
	send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: created.ID}})
	recvType(t, conn, event.TypeRoomJoined)
	recvType(t, conn, event.TypeMessageHistory)

	clock.Advance(time.Minute)
	if n := svc.SweepExpired(); n != 1 {
		t.Fatalf("Expected 1 eviction, got %d", n)
	}

	recvType(t, conn, event.TypeRoomExpired)
}

func TestWireErrors(t *testing.T) {
	svc, clock, _, ts := newTestServer(t)

	t.Run("JoinUnknownRoom", func(t *testing.T) {
		conn := dial(t, ts)
		send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: "nope"}})
		env := recvType(t, conn, event.TypeError)

		var data event.ErrorData
		if err := env.Decode(&data); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !strings.Contains(data.Message, "not found") {
			t.Errorf("Expected a not-found message, got %q", data.Message)
		}
	})

	t.Run("SendToExpiredRoom", func(t *testing.T) {
		created, _ := svc.CreateRoom("stale", 1)
		clock.Advance(time.Minute)

		conn := dial(t, ts)
		send(t, conn, event.Event{
			Type: event.TypeSendMessage,
			Data: event.SendMessageData{RoomID: created.ID, Content: "late", Sender: "ana"},
		})
		env := recvType(t, conn, event.TypeError)

		var data event.ErrorData
		env.Decode(&data)
		if !strings.Contains(data.Message, "expired") {
			t.Errorf("Expected an expired message, got %q", data.Message)
		}
	})

	t.Run("InvalidCreateParameters", func(t *testing.T) {
		conn := dial(t, ts)
		send(t, conn, event.Event{
			Type: event.TypeCreateRoom,
			Data: event.CreateRoomData{Name: "", DurationMinutes: 10},
		})
		recvType(t, conn, event.TypeError)
	})

	t.Run("MalformedFrame", func(t *testing.T) {
		conn := dial(t, ts)
		if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
			t.Fatalf("WriteMessage failed: %v", err)
		}
		recvType(t, conn, event.TypeError)
	})

	t.Run("UnknownEventType", func(t *testing.T) {
		conn := dial(t, ts)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)); err != nil {
			t.Fatalf("WriteMessage failed: %v", err)
		}
		env := recvType(t, conn, event.TypeError)

		var data event.ErrorData
		env.Decode(&data)
		if !strings.Contains(data.Message, "teleport") {
			t.Errorf("Expected the unknown type to be named, got %q", data.Message)
		}
	})

	t.Run("ErrorsLeaveConnectionUsable", func(t *testing.T) {
		created, _ := svc.CreateRoom("alive", 10)

		conn := dial(t, ts)
		send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: "nope"}})
		recvType(t, conn, event.TypeError)

		send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: created.ID}})
		recvType(t, conn, event.TypeRoomJoined)
		recvType(t, conn, event.TypeMessageHistory)
	})
}

func TestSyncTimeOverWire(t *testing.T) {
	svc, _, _, ts := newTestServer(t)
	created, _ := svc.CreateRoom("standup", 10)

	conn := dial(t, ts)
	send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: created.ID}})
	recvType(t, conn, event.TypeRoomJoined)
	recvType(t, conn, event.TypeMessageHistory)

	send(t, conn, event.Event{Type: event.TypeSyncTime, Data: event.SyncTimeData{RoomID: created.ID}})
	env := recvType(t, conn, event.TypeRoomJoined)

	var data event.RoomJoinedData
	if err := env.Decode(&data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if data.ExpiresAt != created.ExpiresAt {
		t.Errorf("Expected authoritative expiresAt %d, got %d", created.ExpiresAt, data.ExpiresAt)
	}
}

func TestSwitchingRoomsLeavesOldGroup(t *testing.T) {
	svc, _, hub, ts := newTestServer(t)

	first, _ := svc.CreateRoom("first", 10)
	second, _ := svc.CreateRoom("second", 10)

	conn := dial(t, ts)
	send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: first.ID}})
	recvType(t, conn, event.TypeRoomJoined)
	recvType(t, conn, event.TypeMessageHistory)

	send(t, conn, event.Event{Type: event.TypeJoinRoom, Data: event.JoinRoomData{RoomID: second.ID}})
	recvType(t, conn, event.TypeRoomJoined)
	recvType(t, conn, event.TypeMessageHistory)
	waitForGroupSize(t, hub, first.ID, 0)

	// Traffic in the first room must no longer reach this connection.
	if _, err := svc.SendMessage(first.ID, "ghost", "ana"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := svc.SendMessage(second.ID, "real", "ana"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	env := recvType(t, conn, event.TypeNewMessage)
	var data event.NewMessageData
	if err := env.Decode(&data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if data.Message.Content != "real" {
		t.Errorf("Expected only the second room's message, got %q", data.Message.Content)
	}
}
