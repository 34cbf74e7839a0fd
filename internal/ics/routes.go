package ics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Maxservais/chat/internal/schedule"
)

type exportRequest struct {
	Slugs []string `json:"slugs"`
}

// RegisterRoutes mounts the calendar export route.
func RegisterRoutes(r chi.Router, src *schedule.Source, gen *Generator) {
	r.Post("/api/export", handleExport(src, gen))
}

func handleExport(src *schedule.Source, gen *Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(req.Slugs) == 0 {
			http.Error(w, `{"error":"slugs is required"}`, http.StatusBadRequest)
			return
		}

		all, err := src.Events(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
			return
		}

		wanted := make(map[string]bool, len(req.Slugs))
		for _, s := range req.Slugs {
			wanted[s] = true
		}
		var selected []schedule.Event
		for _, e := range all {
			if wanted[e.Slug] {
				selected = append(selected, e)
			}
		}
		if len(selected) == 0 {
			http.Error(w, `{"error":"no matching events"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gen.Generate(selected))
	}
}
