// Package export turns a timeline chart into files: SVG, a standalone
// interactive HTML page, PNG/JPEG screenshots, Parquet series and a
// terminal summary table.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"sync"

	"github.com/buffos/revenue-timeline/timeline"
)

// HTMLOptions configures the standalone page.
type HTMLOptions struct {
	Title string
	// APIBase and SessionID, when both set, make the page forward pointer
	// and brush input to a running server session and redraw from it.
	APIBase   string
	SessionID string
}

type htmlPage struct {
	Title      string
	Background string
	FontFamily string
	TextColor  string
	SVG        template.HTML
	StateJSON  template.JS
	APIBase    string
	SessionID  string
}

var (
	pageTmpl     *template.Template
	pageTmplOnce sync.Once
)

func getPageTemplate() *template.Template {
	pageTmplOnce.Do(func() {
		pageTmpl = template.Must(template.New("page").Parse(pageTemplateStr))
	})
	return pageTmpl
}

// GenerateHTML writes a page embedding the chart SVG and its state. The
// page dispatches "timeline:pointer", "timeline:leave" and "timeline:brush"
// DOM events so a host page can observe interaction.
func GenerateHTML(w io.Writer, c *timeline.Chart, opts HTMLOptions) error {
	style := c.Style()
	state, err := json.Marshal(c.State())
	if err != nil {
		return fmt.Errorf("failed to marshal chart state: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = style.TitleText
	}

	page := htmlPage{
		Title:      title,
		Background: style.Background,
		FontFamily: style.FontFamily,
		TextColor:  style.TextColor,
		SVG:        template.HTML(c.SVG()),
		StateJSON:  template.JS(state),
		APIBase:    opts.APIBase,
		SessionID:  opts.SessionID,
	}
	if err := getPageTemplate().Execute(w, page); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	log.Printf("Generated HTML page (%d bytes of SVG).", len(page.SVG))
	return nil
}

const pageTemplateStr = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; padding: 24px; background: {{.Background}}; color: {{.TextColor}}; font-family: {{.FontFamily}}; }
.timeline-container { position: relative; width: 100%; user-select: none; }
.timeline-container svg { display: block; max-width: 100%; }
</style>
</head>
<body>
<div class="timeline-container" id="timeline" data-api="{{.APIBase}}" data-session="{{.SessionID}}">
{{.SVG}}
</div>
<script>
(function() {
  const state = {{.StateJSON}};
  const root = document.getElementById('timeline');
  const api = root.dataset.api, session = root.dataset.session;
  const margin = { left: 65, top: 20 };
  let pending = 0, frame = 0, dragging = false;

  function plotX(evt) {
    const svg = root.querySelector('svg');
    const box = svg.getBoundingClientRect();
    const scale = box.width / svg.width.baseVal.value;
    return (evt.clientX - box.left) / scale - margin.left;
  }
  // plotWidth follows the SVG currently on the page.
  function plotWidth() {
    const area = root.querySelector('.timeline-hover-area');
    return area ? area.width.baseVal.value : state.width;
  }
  function emit(name, detail) {
    root.dispatchEvent(new CustomEvent(name, { detail: detail, bubbles: true }));
  }
  function post(path, body) {
    if (!api || !session) return Promise.resolve();
    return fetch(api + '/api/sessions/' + session + path, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body || {})
    }).then(redraw);
  }
  function redraw() {
    return fetch(api + '/api/sessions/' + session + '/svg')
      .then(r => r.text())
      .then(svg => { root.innerHTML = svg; });
  }

  root.addEventListener('mousemove', function(evt) {
    const x = plotX(evt);
    if (dragging) {
      emit('timeline:brush', { phase: 'move', x: x });
      post('/brush', { phase: 'move', x: x });
      return;
    }
    pending = x;
    if (frame) return;
    frame = requestAnimationFrame(function() {
      frame = 0;
      const px = pending;
      if (px < 0 || px > plotWidth()) return;
      emit('timeline:pointer', { x: px });
      post('/pointer', { x: px });
    });
  });
  root.addEventListener('mouseleave', function() {
    if (frame) {
      cancelAnimationFrame(frame);
      frame = 0;
    }
    emit('timeline:leave', {});
    post('/leave');
  });
  root.addEventListener('mousedown', function(evt) {
    dragging = true;
    const x = plotX(evt);
    emit('timeline:brush', { phase: 'start', x: x });
    post('/brush', { phase: 'start', x: x });
  });
  window.addEventListener('mouseup', function(evt) {
    if (!dragging) return;
    dragging = false;
    const x = plotX(evt);
    emit('timeline:brush', { phase: 'end', x: x });
    post('/brush', { phase: 'end', x: x });
  });
  root.addEventListener('dblclick', function() {
    emit('timeline:brush', { phase: 'clear' });
    post('/clear');
  });
})();
</script>
</body>
</html>
`
