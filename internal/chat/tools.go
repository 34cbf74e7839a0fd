package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Maxservais/chat/internal/ics"
	"github.com/Maxservais/chat/internal/llm"
	"github.com/Maxservais/chat/internal/schedule"
)

// Tools is the tool surface exposed to the reasoning model. Every
// outcome, including bad arguments and empty results, comes back as a
// descriptive string so the model can recover conversationally.
type Tools struct {
	source *schedule.Source
	gen    *ics.Generator
}

// NewTools creates the tool surface over the given schedule source and
// calendar generator.
func NewTools(source *schedule.Source, gen *ics.Generator) *Tools {
	return &Tools{source: source, gen: gen}
}

// Definitions returns the function schemas advertised to the model.
func (t *Tools) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "search_events",
			Description: "Search conference sessions by free-text query or by a list of interests. Optional track and date filters.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":     map[string]any{"type": "string", "description": "Free-text search query"},
					"interests": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Interest phrases to match independently"},
					"track":     map[string]any{"type": "string", "description": "Filter by track name (substring)"},
					"date":      map[string]any{"type": "string", "description": "Filter by date, YYYY-MM-DD"},
					"limit":     map[string]any{"type": "integer", "description": "Max results (default 10)"},
					"offset":    map[string]any{"type": "integer", "description": "Pagination offset"},
				},
			},
		},
		{
			Name:        "get_event_details",
			Description: "Get full details for a single session by its slug.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"slug": map[string]any{"type": "string", "description": "Event slug from a search result"},
				},
				"required": []string{"slug"},
			},
		},
		{
			Name:        "get_conference_metadata",
			Description: "Get catalogue facts: tracks, dates, venues, and total session count.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "generate_calendar_export",
			Description: "Generate an importable iCalendar file for the given session slugs.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"slugs": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Slugs of sessions to export"},
				},
				"required": []string{"slugs"},
			},
		},
	}
}

// Execute dispatches a tool call. The returned string is the tool
// result fed back to the model; it is never a Go error.
func (t *Tools) Execute(ctx context.Context, name, args string) string {
	switch name {
	case "search_events":
		return t.searchEvents(ctx, args)
	case "get_event_details":
		return t.eventDetails(ctx, args)
	case "get_conference_metadata":
		return t.metadata(ctx)
	case "generate_calendar_export":
		return t.export(ctx, args)
	default:
		return fmt.Sprintf("Unknown tool %q.", name)
	}
}

type searchArgs struct {
	Query     string   `json:"query"`
	Interests []string `json:"interests"`
	Track     string   `json:"track"`
	Date      string   `json:"date"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
}

func (t *Tools) searchEvents(ctx context.Context, rawArgs string) string {
	var args searchArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "Invalid search arguments: expected a JSON object with query or interests."
	}
	if args.Query == "" && len(args.Interests) == 0 {
		return "Invalid search arguments: provide either a query or a list of interests."
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}

	events, err := t.source.Events(ctx)
	if err != nil {
		return "The schedule service is unavailable right now; try again shortly."
	}
	events = schedule.FilterByTrack(events, args.Track)
	events = schedule.FilterByDate(events, args.Date)

	var matched []schedule.Event
	var matchedBy map[string][]string
	if len(args.Interests) > 0 {
		res := schedule.SearchByInterests(events, args.Interests)
		matched = res.Events
		matchedBy = res.MatchedBy
	} else {
		matched = schedule.SearchByQuery(events, args.Query)
	}

	if len(matched) == 0 {
		return "No sessions matched. Try different wording, or drop the track/date filter."
	}

	total := len(matched)
	if args.Offset >= total {
		return fmt.Sprintf("No more results: %d total matches, offset %d is past the end.", total, args.Offset)
	}
	end := args.Offset + args.Limit
	if end > total {
		end = total
	}
	page := matched[args.Offset:end]

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es), showing %d (offset %d):\n", total, len(page), args.Offset)
	for _, e := range page {
		fmt.Fprintf(&b, "- [%s] %s (%s, %s", e.Slug, e.Title, e.Track, e.StartTime)
		if len(e.Speakers) > 0 {
			fmt.Fprintf(&b, ", speakers: %s", strings.Join(e.Speakers, ", "))
		}
		b.WriteString(")")
		if why, ok := matchedBy[e.Slug]; ok {
			fmt.Fprintf(&b, " [matched: %s]", strings.Join(why, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type detailsArgs struct {
	Slug string `json:"slug"`
}

func (t *Tools) eventDetails(ctx context.Context, rawArgs string) string {
	var args detailsArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args.Slug == "" {
		return "Invalid arguments: expected {\"slug\": \"...\"}."
	}

	event, err := t.source.EventBySlug(ctx, args.Slug)
	if err != nil {
		return "The schedule service is unavailable right now; try again shortly."
	}
	if event == nil {
		return fmt.Sprintf("No session found with slug %q.", args.Slug)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nTrack: %s\nWhen: %s to %s\nVenue: %s\n", event.Title, event.Track, event.StartTime, event.EndTime, event.Venue)
	if len(event.Speakers) > 0 {
		fmt.Fprintf(&b, "Speakers: %s\n", strings.Join(event.Speakers, ", "))
	}
	if event.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", event.Description)
	}
	return b.String()
}

func (t *Tools) metadata(ctx context.Context) string {
	meta, err := t.source.Metadata(ctx)
	if err != nil {
		return "The schedule service is unavailable right now; try again shortly."
	}
	return fmt.Sprintf("Tracks: %s\nDates: %s\nVenues: %s\nTotal sessions: %d",
		strings.Join(meta.Tracks, ", "),
		strings.Join(meta.Dates, ", "),
		strings.Join(meta.Venues, ", "),
		meta.TotalEvents)
}

type exportArgs struct {
	Slugs []string `json:"slugs"`
}

func (t *Tools) export(ctx context.Context, rawArgs string) string {
	var args exportArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || len(args.Slugs) == 0 {
		return "Invalid arguments: expected {\"slugs\": [\"...\"]}."
	}

	all, err := t.source.Events(ctx)
	if err != nil {
		return "The schedule service is unavailable right now; try again shortly."
	}
	wanted := make(map[string]bool, len(args.Slugs))
	for _, s := range args.Slugs {
		wanted[s] = true
	}
	var selected []schedule.Event
	for _, e := range all {
		if wanted[e.Slug] {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		return "None of those slugs matched a session; search first and use the slugs from the results."
	}

	out := t.gen.Generate(selected)
	return fmt.Sprintf("%s\n\n%s", out.Message, out.FileContent)
}
