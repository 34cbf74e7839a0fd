package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Maxservais/chat/internal/session"
)

// WebSocketHandler returns the chat websocket endpoint. Mounted by the
// server outside the request-timeout middleware: the connection is
// long-lived.
func (c *Controller) WebSocketHandler() http.HandlerFunc {
	return c.handleWebSocket
}

// RegisterRoutes mounts the session REST surface.
func RegisterRoutes(r chi.Router, c *Controller) {
	r.Route("/api/sessions/{key}", func(r chi.Router) {
		r.Get("/messages", handleHistory(c))
		r.Get("/profile", handleProfile(c))
		r.Post("/clear", handleClear(c))
	})
}

func handleHistory(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		history, err := c.store.History(r.Context(), key)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if history == nil {
			history = []session.Message{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"messages": history})
	}
}

func handleProfile(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		profile, err := c.store.GetProfile(r.Context(), key)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if profile == nil {
			http.Error(w, `{"error":"no profile"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	}
}

func handleClear(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		lock := c.sessionLock(key)
		lock.Lock()
		err := c.store.Clear(r.Context(), key)
		lock.Unlock()
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
