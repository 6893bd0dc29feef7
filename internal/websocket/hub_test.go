package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPublishFansOutToOwningAccountOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	accountA := uuid.New()
	accountB := uuid.New()
	clientA := &Client{Hub: hub, AccountID: accountA, Send: make(chan []byte, 1)}
	clientB := &Client{Hub: hub, AccountID: accountB, Send: make(chan []byte, 1)}
	hub.register <- clientA
	hub.register <- clientB

	hub.Publish(accountA, "invoice.sent", map[string]string{"invoice_no": "INV-20260831-00001"})

	select {
	case msg := <-clientA.Send:
		var ev Event
		assert.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "invoice.sent", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered to the owning account's client")
	}

	select {
	case <-clientB.Send:
		t.Fatal("event leaked to a client of another account")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReturnsAfterHubHandOff(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No clients registered: the loop consumes the message and Publish must
	// not block forever.
	done := make(chan struct{})
	go func() {
		hub.Publish(uuid.New(), "invoice.created", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no clients connected")
	}
}
