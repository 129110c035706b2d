package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/export"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	contract.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

const moviesCSV = `Series_Title,Released_Year,Gross
Heat,1995,"67,436,818"
Se7en,1995,"100,125,643"
Fargo,1996,"24,611,975"
Titanic,1997,"659,325,379"
`

func testChart() *timeline.Chart {
	return export.StaticChart([]timeline.Record{
		{Title: "Heat", ReleaseYear: 1995, Gross: 67e6},
		{Title: "Fargo", ReleaseYear: 1996, Gross: 24e6},
		{Title: "Titanic", ReleaseYear: 1997, Gross: 659e6},
	}, export.StaticOptions{Width: 900, Logger: log.New(io.Discard, "", 0)})
}

func TestRender(t *testing.T) {
	tests := []struct {
		format contract.OutputFormat
		check  func(t *testing.T, out []byte)
	}{
		{contract.SVGFormat, func(t *testing.T, out []byte) {
			assert.True(t, bytes.HasPrefix(out, []byte(`<svg class="revenue-timeline"`)))
		}},
		{contract.HTMLFormat, func(t *testing.T, out []byte) {
			assert.True(t, bytes.HasPrefix(out, []byte("<!DOCTYPE html>")))
		}},
		{contract.JSONFormat, func(t *testing.T, out []byte) {
			var st timeline.State
			require.NoError(t, json.Unmarshal(out, &st))
			assert.Len(t, st.Points, 3)
			assert.Equal(t, 815.0, st.Width)
		}},
		{contract.ParquetFormat, func(t *testing.T, out []byte) {
			rows, err := parquet.Read[timeline.YearPoint](bytes.NewReader(out), int64(len(out)))
			require.NoError(t, err)
			assert.Len(t, rows, 3)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(rootCtx, &buf, testChart(), &contract.Config{Format: tt.format}))
			tt.check(t, buf.Bytes())
		})
	}

	err := render(rootCtx, io.Discard, testChart(), &contract.Config{Format: "bmp"})
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.svg")
	require.NoError(t, writeOutput(ok, func(w io.Writer) error {
		_, err := io.WriteString(w, "<svg/>")
		return err
	}))
	got, err := os.ReadFile(ok)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))

	failed := filepath.Join(dir, "failed.svg")
	err = writeOutput(failed, func(w io.Writer) error {
		_, _ = io.WriteString(w, "<sv")
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.NoFileExists(t, failed, "incomplete output is removed")

	err = writeOutput(filepath.Join(dir, "missing", "x.svg"), func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "error creating output file")
}

func TestImportThenRenderFromDatabase(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(moviesCSV), 0o644))
	dbPath := filepath.Join(dir, "movies.db")
	outPath := filepath.Join(dir, "series.json")

	rootCmd.SetArgs([]string{"import", csvPath, "--to-connect", dbPath, "--color", "no"})
	require.NoError(t, Execute())

	rootCmd.SetArgs([]string{"render", "--db-driver", "sqlite", "--db-connect", dbPath, "-f", "json", "-o", outPath, "--select", "1996:1997"})
	require.NoError(t, Execute())

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var st timeline.State
	require.NoError(t, json.Unmarshal(raw, &st))
	require.Len(t, st.Points, 3)
	assert.Equal(t, timeline.YearPoint{Year: 1997, AverageRevenue: 659325379}, st.Points[2])
	require.NotNil(t, st.Selection)
	assert.InDelta(t, 1996, st.Selection.Start, 1e-9)
	assert.Equal(t, timeline.BrushActive, st.Brush)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, Execute())
	assert.True(t, strings.HasPrefix(out.String(), "revenue-timeline CLI"))
	assert.Contains(t, out.String(), "Version: dev")
}
