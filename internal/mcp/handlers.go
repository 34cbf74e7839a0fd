package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Maxservais/chat/internal/schedule"
)

// handleSearchEvents searches the catalogue by query or interests.
func (s *Server) handleSearchEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	interests := request.GetStringSlice("interests", nil)
	if query == "" && len(interests) == 0 {
		return mcp.NewToolResultError("provide either query or interests"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	events, err := s.source.Events(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule unavailable: %v", err)), nil
	}
	events = schedule.FilterByTrack(events, request.GetString("track", ""))
	events = schedule.FilterByDate(events, request.GetString("date", ""))

	var matched []schedule.Event
	var matchedBy map[string][]string
	if len(interests) > 0 {
		res := schedule.SearchByInterests(events, interests)
		matched = res.Events
		matchedBy = res.MatchedBy
	} else {
		matched = schedule.SearchByQuery(events, query)
	}

	if len(matched) == 0 {
		return mcp.NewToolResultText("No sessions matched. Try different wording, or drop the track/date filter."), nil
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return mcp.NewToolResultText(formatEvents(matched, matchedBy)), nil
}

// handleGetEventDetails returns one session in full.
func (s *Server) handleGetEventDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := request.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slug"), nil
	}

	event, err := s.source.EventBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule unavailable: %v", err)), nil
	}
	if event == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no session found with slug %q", slug)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nTrack: %s\nWhen: %s to %s\nVenue: %s\n", event.Title, event.Track, event.StartTime, event.EndTime, event.Venue)
	if len(event.Speakers) > 0 {
		fmt.Fprintf(&sb, "Speakers: %s\n", strings.Join(event.Speakers, ", "))
	}
	if event.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", event.Description)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetMetadata returns catalogue-level facts.
func (s *Server) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meta, err := s.source.Metadata(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule unavailable: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Tracks: %s\nDates: %s\nVenues: %s\nTotal sessions: %d",
		strings.Join(meta.Tracks, ", "),
		strings.Join(meta.Dates, ", "),
		strings.Join(meta.Venues, ", "),
		meta.TotalEvents)), nil
}

// handleExportCalendar renders the selected sessions as an ics file.
func (s *Server) handleExportCalendar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slugs := request.GetStringSlice("slugs", nil)
	if len(slugs) == 0 {
		return mcp.NewToolResultError("missing required parameter: slugs"), nil
	}

	all, err := s.source.Events(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule unavailable: %v", err)), nil
	}
	wanted := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		wanted[slug] = true
	}
	var selected []schedule.Event
	for _, e := range all {
		if wanted[e.Slug] {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		return mcp.NewToolResultError("none of those slugs matched a session"), nil
	}

	out := s.gen.Generate(selected)
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", out.Message, out.FileContent)), nil
}

// formatEvents renders search results as agent-readable text.
func formatEvents(events []schedule.Event, matchedBy map[string][]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d session(s):\n", len(events)))

	for i, e := range events {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Slug: %s\nTitle: %s\nTrack: %s\nWhen: %s\n", e.Slug, e.Title, e.Track, e.StartTime))
		if len(e.Speakers) > 0 {
			sb.WriteString(fmt.Sprintf("Speakers: %s\n", strings.Join(e.Speakers, ", ")))
		}
		if why, ok := matchedBy[e.Slug]; ok {
			sb.WriteString(fmt.Sprintf("Matched interests: %s\n", strings.Join(why, ", ")))
		}
	}

	return sb.String()
}
