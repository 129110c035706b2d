package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/buffos/revenue-timeline/internal/export"
	"github.com/buffos/revenue-timeline/internal/metrics"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/gin-gonic/gin"
)

type handler struct {
	store  *Store
	points []timeline.YearPoint
}

type createRequest struct {
	Width float64 `json:"width"`
}

type widthRequest struct {
	Width *float64 `json:"width" binding:"required"`
}

type pointerRequest struct {
	X *float64 `json:"x" binding:"required"`
}

type brushRequest struct {
	Phase string   `json:"phase" binding:"required,oneof=start move end"`
	X     *float64 `json:"x" binding:"required"`
}

type selectRequest struct {
	Start *float64 `json:"start" binding:"required"`
	End   *float64 `json:"end" binding:"required"`
}

type highlightRequest struct {
	Year *int `json:"year" binding:"required"`
}

// session resolves :id or writes a 404.
func (h *handler) session(c *gin.Context) (*Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

// respondState writes the chart state, or 404 when the session went away
// mid-request.
func (h *handler) respondState(c *gin.Context, s *Session, status int) {
	st, err := s.State()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, gin.H{"id": s.ID, "state": st})
}

// act runs fn on the session chart and responds with the new state.
func (h *handler) act(c *gin.Context, s *Session, fn func(*timeline.Chart)) {
	if err := s.Do(fn); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.respondState(c, s, http.StatusOK)
}

func (h *handler) createSession(c *gin.Context) {
	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	s, err := h.store.Create(req.Width)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respondState(c, s, http.StatusCreated)
}

func (h *handler) getState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respondState(c, s, http.StatusOK)
}

func (h *handler) deleteSession(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrSessionNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getSVG(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	svg, err := s.SVG()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	metrics.RendersTotal.WithLabelValues("svg").Inc()
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

func (h *handler) getPage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	opts := export.HTMLOptions{
		APIBase:   fmt.Sprintf("%s://%s", scheme, c.Request.Host),
		SessionID: s.ID,
	}

	var buf bytes.Buffer
	var renderErr error
	if err := s.Do(func(chart *timeline.Chart) {
		renderErr = export.GenerateHTML(&buf, chart, opts)
	}); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if renderErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": renderErr.Error()})
		return
	}
	metrics.RendersTotal.WithLabelValues("html").Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) getEvents(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": s.Drain()})
}

func (h *handler) resize(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req widthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Resize(*req.Width); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	// The resize signal is handled by a task the chart posts to itself.
	h.respondState(c, s, http.StatusOK)
}

func (h *handler) pointer(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.AllowPointer() {
		metrics.PointerEventsDroppedTotal.Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "pointer events are rate limited"})
		return
	}
	x := *req.X
	h.act(c, s, func(chart *timeline.Chart) { chart.PointerMove(x) })
}

func (h *handler) leave(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.act(c, s, (*timeline.Chart).PointerLeave)
}

func (h *handler) brush(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req brushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	x := *req.X
	h.act(c, s, func(chart *timeline.Chart) {
		switch req.Phase {
		case "start":
			chart.BrushStart(x)
		case "move":
			chart.BrushMove(x)
		case "end":
			chart.BrushEnd(x)
		}
	})
}

func (h *handler) selectYears(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end := *req.Start, *req.End
	h.act(c, s, func(chart *timeline.Chart) { chart.SelectYears(start, end) })
}

func (h *handler) clear(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.act(c, s, (*timeline.Chart).DoubleClick)
}

func (h *handler) highlight(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	year := *req.Year
	h.act(c, s, func(chart *timeline.Chart) { chart.HighlightYear(year) })
}

func (h *handler) getSeries(c *gin.Context) {
	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, gin.H{"points": h.points})
	case "parquet":
		var buf bytes.Buffer
		if err := export.WriteSeriesParquet(&buf, h.points); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.RendersTotal.WithLabelValues("parquet").Inc()
		c.Header("Content-Disposition", `attachment; filename="series.parquet"`)
		c.Data(http.StatusOK, "application/vnd.apache.parquet", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or parquet"})
	}
}
