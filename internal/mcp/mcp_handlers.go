package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/buffos/revenue-timeline/internal/export"
	"github.com/buffos/revenue-timeline/internal/metrics"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultSummaryWidth = 100

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	records []timeline.Record
}

// quietLogger keeps chart logging off stdout, which carries the protocol.
var quietLogger = log.New(io.Discard, "", 0)

func (h *toolHandler) handleGetYearSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := h.records
	if p := request.GetString("path", ""); p != "" {
		cfg := h.baseCfg.Clone()
		cfg.Source = dataset.Source{Path: p, Columns: cfg.Source.Columns, Sheet: cfg.Source.Sheet}
		loaded, err := dataset.Load(ctx, cfg.Source)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
		}
		records = loaded
	}

	points := timeline.Aggregate(records)
	start := request.GetInt("start_year", 0)
	end := request.GetInt("end_year", 0)
	if start != 0 && end != 0 && start > end {
		return mcp.NewToolResultError("start_year must not be after end_year"), nil
	}

	filtered := make([]timeline.YearPoint, 0, len(points))
	for _, p := range points {
		if start != 0 && p.Year < start {
			continue
		}
		if end != 0 && p.Year > end {
			continue
		}
		filtered = append(filtered, p)
	}

	jsonData, _ := json.MarshalIndent(filtered, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRenderTimeline(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	switch w := request.GetFloat("width", 0); {
	case w < 0:
		return mcp.NewToolResultError(fmt.Sprintf("width must be greater than 0 (received %v)", w)), nil
	case w > 0:
		cfg.Width = w
	}

	sel, err := selectionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sel != nil {
		cfg.Selection = sel
	}
	if y := request.GetInt("highlight_year", 0); y != 0 {
		cfg.Highlight = &y
	}

	opts := export.StaticOptions{
		Width:     cfg.Width,
		Selection: cfg.Selection,
		Highlight: cfg.Highlight,
		Logger:    quietLogger,
	}
	if y := request.GetInt("hover_year", 0); y != 0 {
		opts.HoverYear = &y
	}

	c := export.StaticChart(h.records, opts)
	metrics.RendersTotal.WithLabelValues("svg").Inc()
	return mcp.NewToolResultText(c.SVG()), nil
}

func (h *toolHandler) handleSummarizeTimeline(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selectionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sel == nil {
		sel = h.baseCfg.Selection
	}

	var buf bytes.Buffer
	err = export.WriteSummary(&buf, timeline.Aggregate(h.records), export.SummaryOptions{
		Width:     request.GetInt("width", defaultSummaryWidth),
		Selection: sel,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// selectionArg reads select_start and select_end. Both or neither must be
// given.
func selectionArg(request mcp.CallToolRequest) (*timeline.SelectionRange, error) {
	args := request.GetArguments()
	_, hasStart := args["select_start"]
	_, hasEnd := args["select_end"]
	switch {
	case !hasStart && !hasEnd:
		return nil, nil
	case hasStart != hasEnd:
		return nil, errors.New("select_start and select_end must be given together")
	}
	start := request.GetFloat("select_start", 0)
	end := request.GetFloat("select_end", 0)
	return &timeline.SelectionRange{Start: min(start, end), End: max(start, end)}, nil
}
