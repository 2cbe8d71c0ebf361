package services

import (
	"testing"
	"time"
)

func TestChangeHubPublishReachesSubscriber(t *testing.T) {
	hub := NewChangeHub()
	events := hub.Subscribe("client-1")
	defer hub.Unsubscribe("client-1")

	hub.PublishInsert("projects", map[string]string{"id": "p1"})

	select {
	case ev := <-events:
		if ev.Table != "projects" || ev.Type != EventInsert {
			t.Errorf("event = %s/%s, want projects/%s", ev.Table, ev.Type, EventInsert)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestChangeHubDeleteCarriesID(t *testing.T) {
	hub := NewChangeHub()
	events := hub.Subscribe("client-1")
	defer hub.Unsubscribe("client-1")

	hub.PublishDelete("tasks", "t9")

	select {
	case ev := <-events:
		if ev.Type != EventDelete {
			t.Errorf("type = %s, want %s", ev.Type, EventDelete)
		}
		row, ok := ev.Row.(map[string]string)
		if !ok || row["id"] != "t9" {
			t.Errorf("row = %v, want id t9", ev.Row)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestChangeHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewChangeHub()
	events := hub.Subscribe("client-1")

	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
	}

	hub.Unsubscribe("client-1")

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after unsubscribe, want 0", hub.ClientCount())
	}
	if _, ok := <-events; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestChangeHubPublishDoesNotBlockOnFullClient(t *testing.T) {
	hub := NewChangeHub()
	hub.Subscribe("slow")
	defer hub.Unsubscribe("slow")

	// Nobody drains the channel. Publishing past its capacity must
	// drop events instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.PublishUpdate("projects", map[string]string{"id": "p1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full client channel")
	}
}
