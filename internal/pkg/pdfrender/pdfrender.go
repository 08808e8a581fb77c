// Package pdfrender converts HTML to PDF through a headless Chrome
// instance. The dossier export treats it as a black-box "render to file"
// operation.
package pdfrender

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	defaultTimeout = 30 * time.Second

	// A4 in inches, Chrome's native print unit
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.4
)

// Renderer holds a reusable Chrome allocator. Close releases it.
type Renderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// Options configures the renderer for the hosting environment.
type Options struct {
	// NoSandbox runs Chrome without its sandbox (needed in containers)
	NoSandbox bool
	// Timeout per render; zero means the default
	Timeout time.Duration
}

func New(opts Options) *Renderer {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.NoSandbox {
		execOpts = append(execOpts, chromedp.Flag("no-sandbox", true))
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	return &Renderer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     timeout,
	}
}

// Render prints an HTML document to A4 PDF bytes.
func (r *Renderer) Render(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("render: empty document")
	}

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginRight(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("render: timed out after %v", r.timeout)
		}
		return nil, fmt.Errorf("render: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("render: empty pdf")
	}
	return pdf, nil
}

// Close releases the Chrome allocator.
func (r *Renderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
