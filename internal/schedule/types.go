package schedule

// Event is a single entry in the conference catalogue. Events come from
// the upstream schedule API and are never mutated here.
type Event struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Track       string   `json:"track"`
	Speakers    []string `json:"speakers"`
	StartTime   string   `json:"start_time"` // ISO 8601; lexical order matches chronological order
	EndTime     string   `json:"end_time"`
	Venue       string   `json:"venue"`
}

// Metadata summarises the catalogue for the metadata tool and API.
type Metadata struct {
	Tracks      []string `json:"tracks"`
	Dates       []string `json:"dates"`
	Venues      []string `json:"venues"`
	TotalEvents int      `json:"total_events"`
}
