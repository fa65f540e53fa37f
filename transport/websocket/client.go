package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/chat/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound queue depth per connection.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// sessionState is the protocol state of one connection.
type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// session tracks which room the connection is currently subscribed to.
// It is a routing reference only; room state lives in the store.
type session struct {
	state  sessionState
	roomID string
}

// Client is one websocket connection: its outbound queue, its pumps, and
// its protocol session. It implements service.Subscriber.
type Client struct {
	hub  *Hub
	svc  service.ChatService
	conn *websocket.Conn
	send chan event.Event

	// sess is touched only by the read pump goroutine.
	sess session
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// the client's pumps.
func ServeWS(svc service.ChatService, hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  hub,
		svc:  svc,
		conn: conn,
		send: make(chan event.Event, sendBufferSize),
	}

	go client.writePump()
	go client.readPump()
}

// Send enqueues an event for delivery without blocking. It reports false
// when the queue is full, which makes the hub drop this subscriber.
func (c *Client) Send(evt event.Event) bool {
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

// readPump reads envelopes from the connection and drives the session
// state machine until the peer disconnects.
func (c *Client) readPump() {
	defer func() {
		if c.sess.state == stateJoined {
			c.svc.Leave(c.sess.roomID, c)
		}
		c.sess.state = stateClosed
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var env event.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.Send(event.Error(fmt.Errorf("malformed event: %w", err)))
			continue
		}
		c.handleEvent(&env)
	}
}

// handleEvent dispatches one inbound envelope. Failures are recoverable
// and connection-local: they emit a targeted error frame and leave the
// session state unchanged.
func (c *Client) handleEvent(env *event.Envelope) {
	switch env.Type {
	case event.TypeCreateRoom:
		var data event.CreateRoomData
		if err := env.Decode(&data); err != nil {
			c.Send(event.Error(err))
			return
		}
		r, err := c.svc.CreateRoom(data.Name, data.DurationMinutes)
		if err != nil {
			c.Send(event.Error(err))
			return
		}
		// Creating does not join; the caller only gets the ack.
		c.Send(event.RoomCreated(r))

	case event.TypeJoinRoom:
		var data event.JoinRoomData
		if err := env.Decode(&data); err != nil {
			c.Send(event.Error(err))
			return
		}
		r, err := c.svc.Join(data.RoomID, c)
		if err != nil {
			c.Send(event.Error(err))
			return
		}
		if c.sess.state == stateJoined && c.sess.roomID != r.ID {
			c.svc.Leave(c.sess.roomID, c)
		}
		c.sess = session{state: stateJoined, roomID: r.ID}

	case event.TypeSyncTime:
		var data event.SyncTimeData
		if err := env.Decode(&data); err != nil {
			c.Send(event.Error(err))
			return
		}
		// Absent rooms are silently ignored.
		c.svc.SyncTime(data.RoomID, c)

	case event.TypeSendMessage:
		var data event.SendMessageData
		if err := env.Decode(&data); err != nil {
			c.Send(event.Error(err))
			return
		}
		if _, err := c.svc.SendMessage(data.RoomID, data.Content, data.Sender); err != nil {
			c.Send(event.Error(err))
		}

	default:
		c.Send(event.Error(fmt.Errorf("unknown event type %q", env.Type)))
	}
}

// writePump drains the outbound queue onto the connection and keeps the
// peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The read pump closed the queue.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
