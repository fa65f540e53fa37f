package main

import (
	"context"
	"testing"
	"time"

	"github.com/emberchat/emberchat/chat/event"
	"github.com/emberchat/emberchat/config"
)

type collectingSub struct {
	events []event.Event
}

func (c *collectingSub) Send(evt event.Event) bool {
	c.events = append(c.events, evt)
	return true
}

func TestNewEngineWiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Config{SweepInterval: time.Hour}
	svc, hub := newEngine(ctx, cfg)

	created, err := svc.CreateRoom("wiring", 5)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	sub := &collectingSub{}
	if _, err := svc.Join(created.ID, sub); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if hub.GroupSize(created.ID) != 1 {
		t.Errorf("Expected the hub to hold the joined subscriber, group size %d",
			hub.GroupSize(created.ID))
	}

	if _, err := svc.SendMessage(created.ID, "hello", "ana"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	last := sub.events[len(sub.events)-1]
	if last.Type != event.TypeNewMessage {
		t.Errorf("Expected a newMessage broadcast through the hub, got %s", last.Type)
	}
}
