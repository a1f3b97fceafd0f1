package realtime

import "testing"

func TestHubSubscribePublish(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(1)
	defer sub.Close()

	hub.Publish(1, Event{Table: TableTasks, Action: ActionInsert, ID: 42})

	ev := <-sub.C
	if ev.Table != TableTasks || ev.Action != ActionInsert || ev.ID != 42 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestHubPublishDoesNotReachOtherUsers(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(2)
	defer sub.Close()

	hub.Publish(1, Event{Table: TableTasks, Action: ActionDelete, ID: 7})

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event for other user: %+v", ev)
	default:
	}
}

func TestHubReferenceCounting(t *testing.T) {
	hub := NewHub()

	first := hub.Subscribe(5)
	second := hub.Subscribe(5)

	if got := hub.SubscriberCount(5); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	first.Close()
	if got := hub.SubscriberCount(5); got != 1 {
		t.Fatalf("expected 1 subscriber after close, got %d", got)
	}

	second.Close()
	if got := hub.SubscriberCount(5); got != 0 {
		t.Fatalf("expected 0 subscribers after last close, got %d", got)
	}

	// 全部注销后再发布不应崩溃
	hub.Publish(5, Event{Table: TableNotifications, Action: ActionUpdate, ID: 1})
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(9)
	sub.Close()
	sub.Close()

	if got := hub.SubscriberCount(9); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(3)
	defer sub.Close()

	// 超出缓冲的发布不得阻塞
	for i := 0; i < subscriptionBuffer*2; i++ {
		hub.Publish(3, Event{Table: TableTasks, Action: ActionInsert, ID: uint(i)})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
		default:
			if received != subscriptionBuffer {
				t.Fatalf("expected %d buffered events, got %d", subscriptionBuffer, received)
			}
			return
		}
	}
}
