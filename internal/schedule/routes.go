package schedule

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the schedule API routes.
func RegisterRoutes(r chi.Router, src *Source) {
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", handleSearch(src))
		r.Get("/{slug}", handleGetBySlug(src))
	})
	r.Get("/api/metadata", handleMetadata(src))
}

type searchResponse struct {
	Items        []Event             `json:"items"`
	TotalMatches int                 `json:"total_matches"`
	Shown        int                 `json:"shown"`
	Offset       int                 `json:"offset"`
	MatchedBy    map[string][]string `json:"matched_by,omitempty"`
}

func handleSearch(src *Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := src.Events(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
			return
		}

		q := r.URL.Query()
		events = FilterByTrack(events, q.Get("track"))
		events = FilterByDate(events, q.Get("date"))

		var matched []Event
		var matchedBy map[string][]string
		switch {
		case q.Get("interests") != "":
			interests := splitCSV(q.Get("interests"))
			res := SearchByInterests(events, interests)
			matched = res.Events
			matchedBy = res.MatchedBy
		case q.Get("q") != "":
			matched = SearchByQuery(events, q.Get("q"))
		default:
			matched = events
		}

		limit := 20
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		offset := 0
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		total := len(matched)
		page := paginate(matched, limit, offset)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Items:        page,
			TotalMatches: total,
			Shown:        len(page),
			Offset:       offset,
			MatchedBy:    matchedBy,
		})
	}
}

func handleGetBySlug(src *Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		event, err := src.EventBySlug(r.Context(), slug)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
			return
		}
		if event == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(event)
	}
}

func handleMetadata(src *Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := src.Metadata(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(meta)
	}
}

// paginate applies limit/offset to a result slice, returning an empty
// slice rather than nil so JSON encodes [].
func paginate(events []Event, limit, offset int) []Event {
	if offset >= len(events) {
		return []Event{}
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end]
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
