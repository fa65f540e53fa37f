package room

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("ValidRoom", func(t *testing.T) {
		r, err := New("standup", 10, now)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if r.ID == "" {
			t.Error("Expected a non-empty room id")
		}
		if r.Name != "standup" {
			t.Errorf("Expected name 'standup', got %q", r.Name)
		}
		if r.CreatedAt != now.UnixMilli() {
			t.Errorf("Expected createdAt %d, got %d", now.UnixMilli(), r.CreatedAt)
		}
		if len(r.Messages) != 0 {
			t.Errorf("Expected a fresh room to have no messages, got %d", len(r.Messages))
		}
	})

	t.Run("ExpiryMath", func(t *testing.T) {
		r, err := New("standup", 10, now)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		want := now.UnixMilli() + 10*60_000
		if r.ExpiresAt != want {
			t.Errorf("Expected expiresAt %d, got %d", want, r.ExpiresAt)
		}
	})

	t.Run("UniqueIDs", func(t *testing.T) {
		a, _ := New("a", 1, now)
		b, _ := New("b", 1, now)
		if a.ID == b.ID {
			t.Errorf("Expected distinct ids, both were %s", a.ID)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		if _, err := New("", 10, now); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Expected ErrInvalidParameters, got %v", err)
		}
	})

	t.Run("WhitespaceName", func(t *testing.T) {
		if _, err := New("   ", 10, now); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Expected ErrInvalidParameters, got %v", err)
		}
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		if _, err := New("standup", 0, now); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Expected ErrInvalidParameters, got %v", err)
		}
	})

	t.Run("NegativeDuration", func(t *testing.T) {
		if _, err := New("standup", -5, now); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Expected ErrInvalidParameters, got %v", err)
		}
	})
}

func TestExpired(t *testing.T) {
	created := time.UnixMilli(1_700_000_000_000)
	r, err := New("standup", 1, created)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("BeforeDeadline", func(t *testing.T) {
		if r.Expired(created) {
			t.Error("Room should be live at creation")
		}
		if r.Expired(time.UnixMilli(r.ExpiresAt - 1)) {
			t.Error("Room should be live one millisecond before the deadline")
		}
	})

	t.Run("ExactDeadlineIsExpired", func(t *testing.T) {
		if !r.Expired(time.UnixMilli(r.ExpiresAt)) {
			t.Error("Room should be expired at the exact deadline millisecond")
		}
	})

	t.Run("AfterDeadline", func(t *testing.T) {
		if !r.Expired(time.UnixMilli(r.ExpiresAt + 1)) {
			t.Error("Room should be expired after the deadline")
		}
	})
}

func TestAppendAndSnapshot(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	r, err := New("standup", 10, now)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r.Append(NewMessage("first", "ana", now))
	r.Append(NewMessage("second", "bo", now.Add(time.Second)))

	t.Run("PreservesOrder", func(t *testing.T) {
		if len(r.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(r.Messages))
		}
		if r.Messages[0].Content != "first" || r.Messages[1].Content != "second" {
			t.Errorf("Messages out of order: %q, %q", r.Messages[0].Content, r.Messages[1].Content)
		}
	})

	t.Run("SnapshotIsIsolated", func(t *testing.T) {
		snap := r.Snapshot()
		r.Append(NewMessage("third", "ana", now.Add(2*time.Second)))

		if len(snap.Messages) != 2 {
			t.Errorf("Snapshot should keep 2 messages, got %d", len(snap.Messages))
		}
		if len(r.Messages) != 3 {
			t.Errorf("Room should have 3 messages, got %d", len(r.Messages))
		}
	})
}

func TestNewMessage(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	msg := NewMessage("hello", "ana", now)

	if msg.ID == "" {
		t.Error("Expected a non-empty message id")
	}
	if msg.Content != "hello" || msg.Sender != "ana" {
		t.Errorf("Unexpected message fields: %+v", msg)
	}
	if msg.Timestamp != now.UnixMilli() {
		t.Errorf("Expected timestamp %d, got %d", now.UnixMilli(), msg.Timestamp)
	}
}
