// Package raster turns rendered HTML and SVG documents into PNG images by
// screenshotting them in headless Chrome (chromedp).
//
// The document is written to a temporary file and loaded over file://, so
// pages that pull scripts from a CDN (the go-echarts Sankey page) still need
// network access. Settle gives chart animations time to finish before the
// capture.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

const (
	DefaultWidth   = 1200
	DefaultHeight  = 800
	DefaultTimeout = 30 * time.Second
	DefaultSettle  = 1500 * time.Millisecond
)

// Options configures a capture.
type Options struct {
	Width   int64
	Height  int64
	Timeout time.Duration
	Settle  time.Duration // wait after load before capturing
	Quality int           // 100 selects lossless PNG
	// ExecPath selects the Chrome binary. Empty uses chromedp's search.
	ExecPath string
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 100
	}
}

// HTMLToPNG captures an HTML page.
func HTMLToPNG(ctx context.Context, html []byte, opts Options) ([]byte, error) {
	if opts.Settle == 0 {
		opts.Settle = DefaultSettle
	}
	return capture(ctx, html, ".html", opts)
}

// SVGToPNG captures a standalone SVG document.
func SVGToPNG(ctx context.Context, svg []byte, opts Options) ([]byte, error) {
	return capture(ctx, svg, ".svg", opts)
}

func capture(ctx context.Context, doc []byte, ext string, opts Options) ([]byte, error) {
	opts.setDefaults()

	path, cleanup, err := writeTemp(doc, ext)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, allocOpts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var png []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate("file://"+path),
		chromedp.Sleep(opts.Settle),
		chromedp.FullScreenshot(&png, opts.Quality),
	)
	if err != nil {
		if timeoutCtx.Err() != nil && ctx.Err() == nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "capture %s", filepath.Base(path))
		}
		return nil, fmt.Errorf("capture %s: %w", filepath.Base(path), err)
	}
	return png, nil
}

func writeTemp(doc []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "flowatlas-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(doc); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
