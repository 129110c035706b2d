// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the timeline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, records []timeline.Record) *server.MCPServer {
	s := server.NewMCPServer(
		"Revenue Timeline Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		records: records,
	}

	// --- 1. Tool: get_year_series ---
	s.AddTool(mcp.NewTool("get_year_series",
		mcp.WithDescription("Average revenue per release year, sorted by year."),
		mcp.WithString("path", mcp.Description("Load a different data file (csv, json, parquet, xlsx, sqlite) instead of the served dataset.")),
		mcp.WithNumber("start_year", mcp.Description("Only return years at or after this one.")),
		mcp.WithNumber("end_year", mcp.Description("Only return years at or before this one.")),
	), h.handleGetYearSeries)

	// --- 2. Tool: render_timeline ---
	s.AddTool(mcp.NewTool("render_timeline",
		mcp.WithDescription("Render the revenue timeline as an SVG document, optionally with a selected range, a hovered year and a highlighted year."),
		mcp.WithNumber("width", mcp.Description("Container width in pixels. Defaults to the configured width.")),
		mcp.WithNumber("select_start", mcp.Description("First year of the brushed range.")),
		mcp.WithNumber("select_end", mcp.Description("Last year of the brushed range. Required with select_start.")),
		mcp.WithNumber("hover_year", mcp.Description("Year to show under the hover hairline.")),
		mcp.WithNumber("highlight_year", mcp.Description("Year to mark with the pulse marker.")),
	), h.handleRenderTimeline)

	// --- 3. Tool: summarize_timeline ---
	s.AddTool(mcp.NewTool("summarize_timeline",
		mcp.WithDescription("Plain-text table of the yearly averages with a share bar per year."),
		mcp.WithNumber("width", mcp.Description("Table width in columns. Defaults to 100.")),
		mcp.WithNumber("select_start", mcp.Description("First year to mark as selected.")),
		mcp.WithNumber("select_end", mcp.Description("Last year to mark as selected.")),
	), h.handleSummarizeTimeline)

	return s
}

// StartMCPServer starts the timeline MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, records []timeline.Record) error {
	s := NewMCPServer(baseCfg, records)
	return server.ServeStdio(s)
}
