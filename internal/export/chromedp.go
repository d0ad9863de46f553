package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeRasterizer screenshots a document node with headless Chrome. The
// page is loaded as a data: URL and the node captured at the configured
// device scale factor (2x minimum keeps text legible once embedded in the
// PDF).
type ChromeRasterizer struct {
	scale   float64
	timeout time.Duration
	logger  *zap.Logger
}

// NewChromeRasterizer creates a rasterizer. scale below 2 is raised to 2.
func NewChromeRasterizer(scale float64, timeout time.Duration, logger *zap.Logger) *ChromeRasterizer {
	if scale < 2 {
		scale = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRasterizer{scale: scale, timeout: timeout, logger: logger}
}

// Rasterize loads the page and captures the node with id nodeID as a PNG.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, pageHTML []byte, nodeID string) (Raster, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	pageURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(pageHTML)
	selector := "#" + nodeID

	start := time.Now()
	var shot []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1000, 1400, chromedp.EmulateScale(r.scale)),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(selector),
		chromedp.Screenshot(selector, &shot, chromedp.NodeVisible),
	)
	if err != nil {
		return Raster{}, fmt.Errorf("screenshot %s: %w", selector, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(shot))
	if err != nil {
		return Raster{}, fmt.Errorf("decode screenshot: %w", err)
	}
	r.logger.Debug("node rasterized",
		zap.String("node_id", nodeID),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Duration("took", time.Since(start)),
	)
	return Raster{PNG: shot, Width: cfg.Width, Height: cfg.Height}, nil
}
