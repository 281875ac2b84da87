package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"banner_agent/design"
)

// ErrRasterizerUnavailable is returned when no raster backend is configured.
var ErrRasterizerUnavailable = errors.New("rasterizer unavailable")

// Rasterizer converts SVG markup to PNG bytes at canvas size.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg string, canvas design.Canvas) ([]byte, error)
	Close() error
}

// NopRasterizer is used when previews are disabled; reviewers then only see
// the layout JSON.
type NopRasterizer struct{}

func (NopRasterizer) Rasterize(context.Context, string, design.Canvas) ([]byte, error) {
	return nil, ErrRasterizerUnavailable
}

func (NopRasterizer) Close() error { return nil }

// ChromeRasterizer screenshots the SVG in headless Chrome. The browser is
// launched on first use and reused until Close.
type ChromeRasterizer struct {
	// Bin is the Chrome binary; empty lets rod find or download one.
	Bin string
	// ControlURL connects to an already running browser instead of launching.
	ControlURL string

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewChromeRasterizer(bin, controlURL string) *ChromeRasterizer {
	return &ChromeRasterizer{Bin: bin, ControlURL: controlURL}
}

func (r *ChromeRasterizer) start(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	controlURL := r.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if r.Bin != "" {
			l = l.Bin(r.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		r.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if r.launcher != nil {
			r.launcher.Kill()
			r.launcher = nil
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	// keep the browser alive past the launching request's context
	r.browser = browser.Context(context.Background())
	return r.browser, nil
}

func (r *ChromeRasterizer) Rasterize(ctx context.Context, svg string, canvas design.Canvas) ([]byte, error) {
	if err := canvas.Validate(); err != nil {
		return nil, err
	}
	browser, err := r.start(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             canvas.Width,
		Height:            canvas.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.SetDocumentContent(previewHTML(svg)); err != nil {
		return nil, fmt.Errorf("load svg: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}

func (r *ChromeRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

func previewHTML(svg string) string {
	return `<!DOCTYPE html><html><head><style>html,body{margin:0;padding:0;overflow:hidden;background:#fff}svg{display:block}</style></head><body>` +
		svg + `</body></html>`
}
