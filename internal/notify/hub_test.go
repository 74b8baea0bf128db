package notify

import (
	"testing"
	"time"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("user-1")
	defer cancel()

	h.Publish("user-1", "hola")

	select {
	case got := <-ch:
		if got != "hola" {
			t.Fatalf("expected payload, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
	}
}

func TestHub_PublishOnlyToTargetUser(t *testing.T) {
	h := NewHub()

	ch1, cancel1 := h.Subscribe("user-1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("user-2")
	defer cancel2()

	h.Publish("user-1", "solo-1")

	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatalf("user-1 should have received the payload")
	}

	select {
	case got := <-ch2:
		t.Fatalf("user-2 should not receive anything, got %v", got)
	default:
	}
}

func TestHub_PublishWithoutSubscribers_NoBlock(t *testing.T) {
	h := NewHub()
	// no debe bloquear ni entrar en pánico
	h.Publish("nobody", "ping")
}

func TestHub_SlowSubscriberDropsMessages(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("user-1")
	defer cancel()

	// llenar el buffer y seguir publicando: el publicador nunca bloquea
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish("user-1", i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Fatalf("expected %d buffered messages, got %d", subscriberBuffer, received)
			}
			return
		}
	}
}

func TestHub_CancelTwiceIsSafe(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("user-1")
	cancel()
	cancel()

	// el canal quedó cerrado
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}

	// publicar después de cancelar no debe entrar en pánico
	h.Publish("user-1", "late")
}
