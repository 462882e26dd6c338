package booking

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"

	"booking-scraper/utils"
)

// Fetcher returns the markup behind a URL. A Fetcher is a session: it is
// opened once per crawl and closed when the crawl returns.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// SessionFactory opens a new Fetcher.
type SessionFactory func() (Fetcher, error)

// HTTPSession fetches pages with plain GET requests carrying a fixed
// User-Agent header.
type HTTPSession struct {
	collector *colly.Collector
	transport *http.Transport
	logger    *utils.Logger
}

// NewHTTPSession creates a session whose connections are released by Close.
func NewHTTPSession(userAgent string, timeout time.Duration, logger *utils.Logger) *HTTPSession {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(transport)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	return &HTTPSession{collector: c, transport: transport, logger: logger}
}

// Fetch issues a GET for url bound to ctx. Error statuses (403, 404...)
// still return the body, which then extracts to defaults; only transport
// failures are errors.
func (s *HTTPSession) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	collector := s.collector.Clone()
	collector.Context = ctx
	collector.ParseHTTPErrorResponse = true

	var body []byte
	var fetchErr error

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= http.StatusBadRequest {
			s.logger.Warn("[booking] GET %s answered %d, parsing it anyway", url, r.StatusCode)
		}
		body = r.Body
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = fmt.Errorf("booking: GET %s: %w", url, err)
	})

	if err := collector.Visit(url); err != nil {
		if fetchErr != nil {
			return "", fetchErr
		}
		return "", fmt.Errorf("booking: GET %s: %w", url, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return string(body), nil
}

// Close drops idle keep-alive connections held by the session.
func (s *HTTPSession) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

// BrowserSession renders pages in headless Chrome and returns the final DOM.
type BrowserSession struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	timeout       time.Duration
}

// NewBrowserSession starts a headless browser. chromeBin may be empty, in
// which case well-known install locations are searched.
func NewBrowserSession(userAgent, chromeBin string, timeout time.Duration) (*BrowserSession, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Run with no actions launches the browser so start-up errors surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("booking: start browser: %w", err)
	}

	return &BrowserSession{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		timeout:       timeout,
	}, nil
}

// Fetch opens url in a new tab and returns the rendered document.
func (s *BrowserSession) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	if s.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, s.timeout)
		defer cancelTimeout()
	}

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("booking: render %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down.
func (s *BrowserSession) Close() error {
	s.cancelBrowser()
	s.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
