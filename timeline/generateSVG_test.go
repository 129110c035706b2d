package timeline

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario is a chart plus the interactions to replay before serializing.
type scenario struct {
	Width     float64   `json:"width"`
	Records   []Record  `json:"records"`
	Select    []float64 `json:"select,omitempty"`
	Hover     *float64  `json:"hover,omitempty"`
	Highlight *int      `json:"highlight,omitempty"`
	Style     *Style    `json:"style,omitempty"`
}

func (s scenario) play() string {
	sched := NewManualScheduler()
	opts := Options{
		Container: FixedContainer(s.Width),
		Records:   s.Records,
		Scheduler: sched,
		Logger:    quietLogger(),
	}
	if s.Style != nil {
		opts.Style = *s.Style
	}
	c := New(opts)
	if len(s.Select) == 2 {
		c.SelectYears(s.Select[0], s.Select[1])
	}
	if s.Hover != nil {
		c.PointerMove(c.XScale().Apply(*s.Hover))
	}
	if s.Highlight != nil {
		c.HighlightYear(*s.Highlight)
	}
	sched.Flush()
	return c.SVG()
}

// TestSVGGeneration performs SVG comparison testing against snapshots in
// testdata. Missing snapshots are written on first run.
func TestSVGGeneration(t *testing.T) {
	testDataDir := "testdata"

	scenarioFiles, err := filepath.Glob(filepath.Join(testDataDir, "*.scenario.json"))
	if err != nil {
		t.Fatalf("Error finding scenario files: %v", err)
	}
	if len(scenarioFiles) == 0 {
		t.Fatalf("No scenario files found in %s", testDataDir)
	}

	for _, scenarioFile := range scenarioFiles {
		baseName := strings.TrimSuffix(filepath.Base(scenarioFile), ".scenario.json")
		t.Run(baseName, func(t *testing.T) {
			expectedSVGFile := filepath.Join(testDataDir, baseName+".expected.svg")

			scenarioBytes, err := os.ReadFile(scenarioFile)
			if err != nil {
				t.Fatalf("Error reading scenario file %s: %v", scenarioFile, err)
			}
			var sc scenario
			if err := json.Unmarshal(scenarioBytes, &sc); err != nil {
				t.Fatalf("Error unmarshalling scenario %s: %v", scenarioFile, err)
			}

			generatedSVG := sc.play()
			assertWellFormed(t, generatedSVG)

			expectedSVGBytes, err := os.ReadFile(expectedSVGFile)
			if err != nil {
				if os.IsNotExist(err) {
					t.Logf("Expected SVG file %s not found. Creating it.", expectedSVGFile)
					if writeErr := os.WriteFile(expectedSVGFile, []byte(generatedSVG), 0644); writeErr != nil {
						t.Errorf("Failed to write new expected SVG %s: %v", expectedSVGFile, writeErr)
					}
					return
				}
				t.Fatalf("Error reading expected SVG file %s: %v", expectedSVGFile, err)
			}

			normalizedGenerated := strings.ReplaceAll(generatedSVG, "\r\n", "\n")
			normalizedExpected := strings.ReplaceAll(string(expectedSVGBytes), "\r\n", "\n")

			if normalizedGenerated != normalizedExpected {
				diff := findFirstDifference(normalizedExpected, normalizedGenerated)
				t.Errorf("Generated SVG for %s does not match %s.\nFirst difference near character %d:\nEXPECTED:\n...%s...\nGOT:\n...%s...",
					baseName, expectedSVGFile, diff.Index, diff.ExpectedContext, diff.GotContext)
				failedFile := filepath.Join(testDataDir, baseName+".failed.svg")
				_ = os.WriteFile(failedFile, []byte(generatedSVG), 0644)
				t.Logf("Wrote differing output to %s", failedFile)
			}
		})
	}
}

// assertWellFormed parses the document as XML.
func assertWellFormed(t *testing.T, svg string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err, "SVG must be well-formed XML")
	}
}

func TestSVGStructure(t *testing.T) {
	hover := 1985.0
	highlight := 1979
	svg := scenario{
		Width: 640,
		Records: []Record{
			{ReleaseYear: 1975, Gross: 260e6},
			{ReleaseYear: 1982, Gross: 435e6},
			{ReleaseYear: 1985, Gross: 210e6},
		},
		Select:    []float64{1977, 1982},
		Hover:     &hover,
		Highlight: &highlight,
	}.play()

	assertWellFormed(t, svg)
	assert.Contains(t, svg, `<svg class="revenue-timeline" width="640" height="120"`)
	assert.Contains(t, svg, `<g transform="translate(65,20)">`)
	assert.Contains(t, svg, "Average Movie Revenue by Year")
	assert.Contains(t, svg, `<rect class="selection"`)
	assert.Contains(t, svg, `<g class="timeline-hairline"`)
	assert.Contains(t, svg, `opacity="1" pointer-events="none"`)
	assert.Contains(t, svg, `>1985</text>`)
	assert.Contains(t, svg, `<circle class="year-pulse"`)
	assert.Contains(t, svg, `$400M`)
	assert.Contains(t, svg, `stroke-dasharray="3 3"`)

	// Axis order: trend line above axes, brush above trend line.
	assert.Less(t, strings.Index(svg, "x-axis"), strings.Index(svg, "trend-line"))
	assert.Less(t, strings.Index(svg, "trend-line"), strings.Index(svg, `class="brush"`))
}

func TestSVGTickLimits(t *testing.T) {
	c, _, _ := newTestChart(t, yearlyRecords(1901, 2029))
	assert.LessOrEqual(t, len(c.scene.XTicks), xTickCount)
	assert.LessOrEqual(t, len(c.scene.YTicks), yTickCount)
	for _, tk := range c.scene.XTicks {
		assert.NotContains(t, tk.Label, ".")
	}
	for _, tk := range c.scene.YTicks {
		assert.True(t, strings.HasPrefix(tk.Label, "$"))
		assert.True(t, strings.HasSuffix(tk.Label, "M"))
	}
}

func TestSVGEscapesStyle(t *testing.T) {
	svg := scenario{
		Width:   400,
		Records: yearlyRecords(2000, 2002),
		Style:   &Style{TitleText: `Revenue <by> "year" & more`},
	}.play()
	assertWellFormed(t, svg)
	assert.Contains(t, svg, "Revenue &lt;by&gt; &quot;year&quot; &amp; more")
}

// diffResult helps show context around the first difference.
type diffResult struct {
	Index           int
	ExpectedContext string
	GotContext      string
}

// findFirstDifference finds the first differing byte and provides context.
func findFirstDifference(expected, got string) diffResult {
	limit := min(len(expected), len(got))
	idx := -1
	for i := 0; i < limit; i++ {
		if expected[i] != got[i] {
			idx = i
			break
		}
	}
	if idx == -1 && len(expected) != len(got) {
		idx = limit
	}
	if idx == -1 {
		return diffResult{Index: 0, ExpectedContext: "(Strings are identical)", GotContext: "(Strings are identical)"}
	}

	const contextSize = 20
	start := max(idx-contextSize, 0)
	return diffResult{
		Index:           idx,
		ExpectedContext: expected[start:min(idx+contextSize, len(expected))],
		GotContext:      got[start:min(idx+contextSize, len(got))],
	}
}
