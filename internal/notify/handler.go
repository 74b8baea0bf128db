package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lifetag-access/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hub *Hub) {
	r.Get("/me/notifications/stream", streamHandler(hub))
}

// streamHandler godoc
// @Summary Stream SSE de cambios de estado de grants
// @Description Canal best-effort: puede perder eventos (suscriptor lento, reinicio del server). Los clientes deben seguir haciendo polling de sus listas; esto solo acelera el refresh.
// @Tags notifications
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {string} string "unauthorized"
// @Router /me/notifications/stream [get]
func streamHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ch, cancel := hub.Subscribe(claims.UserID)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case payload, open := <-ch:
				if !open {
					return
				}
				b, err := json.Marshal(payload)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", b)
				flusher.Flush()
			}
		}
	}
}
