package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"strings"

	"github.com/chromedp/chromedp"
)

// ImageOptions configures GenerateImage.
type ImageOptions struct {
	Format  string // "png", "jpg" or "jpeg"
	Quality int    // JPEG quality, 1-100
	// ExecAllocatorOptions are appended to chromedp's defaults, e.g.
	// chromedp.NoSandbox inside containers.
	ExecAllocatorOptions []chromedp.ExecAllocatorOption
}

// GenerateImage rasterizes an SVG document with headless Chrome and writes
// it as PNG or JPEG.
func GenerateImage(ctx context.Context, svg string, opts ImageOptions, w io.Writer) error {
	format := strings.ToLower(opts.Format)
	if format != "png" && format != "jpg" && format != "jpeg" {
		return fmt.Errorf("unsupported image format '%s'", opts.Format)
	}

	// Load the SVG straight from a data URI; no temp file needed.
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
	log.Println("Created data URI for SVG.")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	allocOpts = append(allocOpts, opts.ExecAllocatorOptions...)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	var screenshotBuf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &screenshotBuf, chromedp.ByQuery),
	}

	log.Println("Running chromedp tasks (navigate and screenshot)...")
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return fmt.Errorf("chromedp execution failed: %w", err)
	}
	log.Println("Chromedp tasks completed successfully.")

	if err := encodeScreenshot(screenshotBuf, format, opts.Quality, w); err != nil {
		return err
	}
	log.Printf("Successfully encoded %s image using chromedp.", strings.ToUpper(format))
	return nil
}

// encodeScreenshot copies a PNG screenshot through or re-encodes it as
// JPEG.
func encodeScreenshot(buf []byte, format string, quality int, w io.Writer) error {
	if len(buf) == 0 {
		return fmt.Errorf("screenshot buffer is empty, screenshot failed")
	}
	r := bytes.NewReader(buf)

	switch format {
	case "png":
		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("failed to write PNG screenshot data: %w", err)
		}
	case "jpg", "jpeg":
		img, err := png.Decode(r)
		if err != nil {
			return fmt.Errorf("failed to decode PNG screenshot: %w", err)
		}
		if quality < 1 || quality > 100 {
			quality = 90
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format '%s'", format)
	}
	return nil
}
