package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const eventsCacheKey = "events"

// Source is a read-through cache over the upstream conference schedule
// API. The upstream refreshes independently; within the TTL this core
// only reads the cached copy.
type Source struct {
	url    string
	ttl    time.Duration
	client *http.Client
	cache  *gocache.Cache
}

// NewSource creates a Source for the given API URL with the given
// staleness window.
func NewSource(url string, ttl time.Duration) *Source {
	return &Source{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Events returns the full catalogue, fetching from upstream on a cache
// miss.
func (s *Source) Events(ctx context.Context) ([]Event, error) {
	if cached, ok := s.cache.Get(eventsCacheKey); ok {
		return cached.([]Event), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating schedule request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule API returned status %d", resp.StatusCode)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}

	s.cache.Set(eventsCacheKey, events, s.ttl)
	return events, nil
}

// EventBySlug looks up a single event. Returns nil when the slug is
// unknown.
func (s *Source) EventBySlug(ctx context.Context, slug string) (*Event, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Slug == slug {
			return &events[i], nil
		}
	}
	return nil, nil
}

// Metadata derives catalogue-level facts from the current event set.
func (s *Source) Metadata(ctx context.Context) (*Metadata, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}

	tracks := make(map[string]bool)
	dates := make(map[string]bool)
	venues := make(map[string]bool)
	for _, e := range events {
		if e.Track != "" {
			tracks[e.Track] = true
		}
		if len(e.StartTime) >= 10 {
			dates[e.StartTime[:10]] = true
		}
		if e.Venue != "" {
			venues[e.Venue] = true
		}
	}

	return &Metadata{
		Tracks:      sortedKeys(tracks),
		Dates:       sortedKeys(dates),
		Venues:      sortedKeys(venues),
		TotalEvents: len(events),
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
