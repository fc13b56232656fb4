package realtime

import (
	"testing"
	"time"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func waitChange(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.Events():
		if !ok {
			t.Fatal("expected a change, channel was closed")
		}
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func expectNoChange(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case c, ok := <-sub.Events():
		if ok {
			t.Errorf("expected no change, got %s %s id=%d", c.Table, c.Op, c.ID)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeReceivesMatchingChange(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "listings"})
	defer sub.Close()

	hub.Publish(Change{Table: "listings", Op: OpInsert, ID: 7})

	got := waitChange(t, sub)
	if got.Op != OpInsert {
		t.Errorf("expected op %s, got %s", OpInsert, got.Op)
	}
	if got.ID != 7 {
		t.Errorf("expected id 7, got %d", got.ID)
	}
}

func TestFilterByTable(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "offers"})
	defer sub.Close()

	hub.Publish(Change{Table: "listings", Op: OpInsert, ID: 1})
	expectNoChange(t, sub)

	hub.Publish(Change{Table: "offers", Op: OpInsert, ID: 2})
	got := waitChange(t, sub)
	if got.Table != "offers" {
		t.Errorf("expected table offers, got %s", got.Table)
	}
}

func TestFilterByID(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "listings", ID: 5})
	defer sub.Close()

	hub.Publish(Change{Table: "listings", Op: OpUpdate, ID: 4})
	expectNoChange(t, sub)

	hub.Publish(Change{Table: "listings", Op: OpUpdate, ID: 5})
	got := waitChange(t, sub)
	if got.ID != 5 {
		t.Errorf("expected id 5, got %d", got.ID)
	}
}

func TestFilterByAttribute(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "offers", Column: "buyer_id", Value: "42"})
	defer sub.Close()

	hub.Publish(Change{Table: "offers", Op: OpInsert, ID: 1, Attrs: map[string]string{"buyer_id": "9"}})
	expectNoChange(t, sub)

	hub.Publish(Change{Table: "offers", Op: OpInsert, ID: 2, Attrs: map[string]string{"buyer_id": "42"}})
	got := waitChange(t, sub)
	if got.ID != 2 {
		t.Errorf("expected id 2, got %d", got.ID)
	}
}

func TestEventsArriveInPublishOrder(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "listings"})
	defer sub.Close()

	for i := uint(1); i <= 3; i++ {
		hub.Publish(Change{Table: "listings", Op: OpUpdate, ID: i})
	}

	for want := uint(1); want <= 3; want++ {
		got := waitChange(t, sub)
		if got.ID != want {
			t.Errorf("expected id %d, got %d", want, got.ID)
		}
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe(Filter{Table: "listings"})
	sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// A second Close must not panic or block.
	sub.Close()
}

func TestStopClosesSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sub := hub.Subscribe(Filter{Table: "listings"})
	hub.Stop()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("expected closed channel after hub stop")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
