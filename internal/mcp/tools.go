package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchEventsTool defines the search_events MCP tool.
var searchEventsTool = mcp.NewTool("search_events",
	mcp.WithDescription("Search conference sessions by free-text query or by a list of interests. Matches titles, tracks, speakers, and descriptions."),
	mcp.WithString("query",
		mcp.Description("Free-text search query"),
	),
	mcp.WithArray("interests",
		mcp.Description("Interest phrases to match independently; results are ranked by how many interests they hit"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("track",
		mcp.Description("Filter results to a track (substring match)"),
	),
	mcp.WithString("date",
		mcp.Description("Filter results to a date, YYYY-MM-DD"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// getEventDetailsTool defines the get_event_details MCP tool.
var getEventDetailsTool = mcp.NewTool("get_event_details",
	mcp.WithDescription("Get full details for a single session by its slug."),
	mcp.WithString("slug",
		mcp.Required(),
		mcp.Description("Event slug from a search result"),
	),
)

// getMetadataTool defines the get_conference_metadata MCP tool.
var getMetadataTool = mcp.NewTool("get_conference_metadata",
	mcp.WithDescription("Get catalogue facts: tracks, dates, venues, and total session count."),
)

// exportCalendarTool defines the generate_calendar_export MCP tool.
var exportCalendarTool = mcp.NewTool("generate_calendar_export",
	mcp.WithDescription("Generate an importable iCalendar (.ics) file for the given session slugs."),
	mcp.WithArray("slugs",
		mcp.Required(),
		mcp.Description("Slugs of sessions to export"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)
