package notify

import (
	"sync"
)

const subscriberBuffer = 16

// Hub es un fan-out en memoria de userID -> suscriptores.
// Best-effort: si un suscriptor va lento se descartan mensajes en vez de
// bloquear al publicador. La vista consistente siempre se recupera por
// polling de las listas.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan any]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan any]struct{})}
}

// Subscribe registra un canal para el usuario. cancel() lo da de baja y
// cierra el canal; llamar cancel dos veces es seguro.
func (h *Hub) Subscribe(userID string) (<-chan any, func()) {
	ch := make(chan any, subscriberBuffer)

	h.mu.Lock()
	m, ok := h.subs[userID]
	if !ok {
		m = make(map[chan any]struct{})
		h.subs[userID] = m
	}
	m[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if m, ok := h.subs[userID]; ok {
				delete(m, ch)
				if len(m) == 0 {
					delete(h.subs, userID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish entrega payload a todos los suscriptores del usuario sin bloquear.
func (h *Hub) Publish(userID string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- payload:
		default:
			// suscriptor lento: se pierde este evento
		}
	}
}
