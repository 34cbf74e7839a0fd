package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Maxservais/chat/internal/ics"
	"github.com/Maxservais/chat/internal/schedule"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	events := []schedule.Event{
		{
			Slug:      "zk-proofs-in-practice",
			Title:     "ZK Proofs in Practice",
			Track:     "Cryptography",
			Speakers:  []string{"Ana Ruiz"},
			StartTime: "2026-11-17 10:00:00",
			EndTime:   "2026-11-17 11:00:00",
			Venue:     "Main Stage",
		},
		{
			Slug:        "defi-risk-models",
			Title:       "DeFi Risk Models",
			Description: "Modeling liquidation cascades.",
			Track:       "DeFi",
			StartTime:   "2026-11-18 14:00:00",
			EndTime:     "2026-11-18 15:00:00",
			Venue:       "Room B",
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(events)
	}))
	t.Cleanup(srv.Close)

	return NewServer(schedule.NewSource(srv.URL, time.Minute), ics.NewGenerator(""))
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_events", searchEventsTool, "search_events"},
		{"get_event_details", getEventDetailsTool, "get_event_details"},
		{"get_conference_metadata", getMetadataTool, "get_conference_metadata"},
		{"generate_calendar_export", exportCalendarTool, "generate_calendar_export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleSearchEvents(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	t.Run("query search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "zk proofs",
		}

		result, err := srv.handleSearchEvents(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !resultContains(result, "ZK Proofs in Practice") {
			t.Errorf("expected matching title in result: %v", result.Content)
		}
	})

	t.Run("interest search attributes matches", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"interests": []any{"zk proofs", "liquidation risk"},
		}

		result, err := srv.handleSearchEvents(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resultContains(result, "Matched interests") {
			t.Errorf("expected interest attribution: %v", result.Content)
		}
	})

	t.Run("missing query and interests", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchEvents(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query and interests")
		}
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "quantum basketweaving",
		}

		result, err := srv.handleSearchEvents(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}

func TestHandleGetEventDetails(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	t.Run("existing slug", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"slug": "defi-risk-models",
		}

		result, err := srv.handleGetEventDetails(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"slug": "nope",
		}

		result, err := srv.handleGetEventDetails(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown slug")
		}
	})

	t.Run("missing slug", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGetEventDetails(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing slug")
		}
	})
}

func TestHandleExportCalendar(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	t.Run("known slugs", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"slugs": []any{"zk-proofs-in-practice"},
		}

		result, err := srv.handleExportCalendar(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !resultContains(result, "BEGIN:VCALENDAR") {
			t.Errorf("expected calendar payload: %v", result.Content)
		}
	})

	t.Run("unknown slugs", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"slugs": []any{"nope"},
		}

		result, err := srv.handleExportCalendar(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown slugs")
		}
	})
}

// resultContains checks the text content of a tool result.
func resultContains(result *mcp.CallToolResult, substr string) bool {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok && strings.Contains(tc.Text, substr) {
			return true
		}
	}
	return false
}
