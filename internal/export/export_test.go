package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/buffos/revenue-timeline/timeline"
	"github.com/chromedp/chromedp"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testChart(t *testing.T) *timeline.Chart {
	t.Helper()
	return timeline.New(timeline.Options{
		Container: timeline.FixedContainer(900),
		Records: []timeline.Record{
			{Title: "Heat", ReleaseYear: 1995, Gross: 67e6},
			{Title: "Se7en", ReleaseYear: 1995, Gross: 100e6},
			{Title: "Fargo", ReleaseYear: 1996, Gross: 24e6},
			{Title: "Titanic", ReleaseYear: 1997, Gross: 659e6},
		},
		Logger: log.New(io.Discard, "", 0),
	})
}

func TestGenerateHTML(t *testing.T) {
	c := testChart(t)
	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(&buf, c, HTMLOptions{APIBase: "http://localhost:8080", SessionID: "abc"}))

	page := buf.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Average Movie Revenue by Year</title>")
	assert.Contains(t, page, `<svg class="revenue-timeline"`)
	assert.Contains(t, page, `data-session="abc"`)
	assert.Contains(t, page, `"average_revenue":83500000`)
	assert.Contains(t, page, "background: #141414")
	assert.Contains(t, page, "timeline:brush")
}

func TestGenerateHTMLEscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(&buf, testChart(t), HTMLOptions{Title: "<script>x</script>"}))
	assert.Contains(t, buf.String(), "<title>&lt;script&gt;x&lt;/script&gt;</title>")
}

// requireChrome skips the test when no Chrome binary is on PATH.
func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{"headless_shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("chrome not found")
}

func TestGenerateHTMLHoverFrameCancelledOnLeave(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(&buf, testChart(t), HTMLOptions{}))
	page := buf.String()
	assert.Contains(t, page, "cancelAnimationFrame(frame)")
	assert.NotContains(t, page, "px > state.width")

	requireChrome(t)
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox, chromedp.WindowSize(1200, 400))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	defer cancelAlloc()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

	// Move, leave and move again before any frame runs: the frame queued by
	// the first move must not fire after the leave.
	const replay = `
window.seen = [];
['timeline:pointer', 'timeline:leave'].forEach(function(name) {
  document.addEventListener(name, function(e) {
    window.seen.push(name + (e.detail.x === undefined ? '' : ':' + (typeof e.detail.x)));
  });
});
const root = document.getElementById('timeline');
const box = root.querySelector('svg').getBoundingClientRect();
root.dispatchEvent(new MouseEvent('mousemove', { clientX: box.left + 200, clientY: box.top + 50 }));
root.dispatchEvent(new MouseEvent('mouseleave'));
root.dispatchEvent(new MouseEvent('mousemove', { clientX: box.left + 300, clientY: box.top + 50 }));
true`

	var ok bool
	var seen []string
	require.NoError(t, chromedp.Run(ctx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes())),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Evaluate(replay, &ok),
		chromedp.Sleep(300*time.Millisecond),
		chromedp.Evaluate(`window.seen`, &seen),
	))
	assert.Equal(t, []string{"timeline:leave", "timeline:pointer:number"}, seen)
}

func TestGenerateImageRejectsFormat(t *testing.T) {
	err := GenerateImage(context.Background(), "<svg/>", ImageOptions{Format: "gif"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 229, G: 9, B: 20, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEncodeScreenshot(t *testing.T) {
	shot := samplePNG(t)

	var pngOut bytes.Buffer
	require.NoError(t, encodeScreenshot(shot, "png", 0, &pngOut))
	assert.Equal(t, shot, pngOut.Bytes())

	var jpgOut bytes.Buffer
	require.NoError(t, encodeScreenshot(shot, "jpeg", 75, &jpgOut))
	img, err := jpeg.Decode(&jpgOut)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	assert.Error(t, encodeScreenshot(nil, "png", 0, io.Discard))
	assert.Error(t, encodeScreenshot([]byte("not a png"), "jpg", 90, io.Discard))
}

func TestWriteSeriesParquet(t *testing.T) {
	points := testChart(t).Points()
	path := filepath.Join(t.TempDir(), "series.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteSeriesParquet(f, points))
	require.NoError(t, f.Close())

	got, err := parquet.ReadFile[timeline.YearPoint](path)
	require.NoError(t, err)
	assert.Equal(t, points, got)
}

func TestWriteSummary(t *testing.T) {
	points := testChart(t).Points()
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, points, SummaryOptions{
		Width:     80,
		Selection: &timeline.SelectionRange{Start: 1995.5, End: 1997},
	}))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "AVERAGE REVENUE")
	assert.Contains(t, strings.ToUpper(out), "SELECTED")
	assert.Contains(t, out, "$83.50M")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, strings.Repeat("█", 30))
	assert.Equal(t, 2, strings.Count(out, "●"), "1996 and 1997 are selected")
}

func TestWriteSummarySelectionRounding(t *testing.T) {
	points := testChart(t).Points()
	tests := []struct {
		name string
		sel  timeline.SelectionRange
		want int
	}{
		{"pixel noise around whole years", timeline.SelectionRange{Start: 1996.0000001, End: 1996.9999999}, 2},
		{"fractional ends", timeline.SelectionRange{Start: 1995.4, End: 1996.6}, 1},
		{"no whole year", timeline.SelectionRange{Start: 1995.2, End: 1995.8}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, points, SummaryOptions{Width: 80, Selection: &tt.sel}))
			assert.Equal(t, tt.want, strings.Count(buf.String(), "●"))
		})
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "     ", bar(0, 5))
	assert.Equal(t, "███  ", bar(0.5, 5))
	assert.Equal(t, "█████", bar(1, 5))
}
