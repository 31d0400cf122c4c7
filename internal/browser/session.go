package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/suhtechpvtltdbuisness-collab/leadGenerationToolBackend/internal/listing"
)

const (
	defaultSearchBaseURL = "https://www.google.com/maps/search/"
	defaultScrollStep    = 1500
	firstResultSelector  = `a.hfpxzc`
)

type Options struct {
	Headless          bool
	ExecPath          string
	UserAgent         string
	SearchBaseURL     string
	NavigationTimeout time.Duration
	ScrollStep        int
}

// Launcher starts one browser per session. Sessions share nothing.
type Launcher struct {
	opts Options
}

func NewLauncher(opts Options) *Launcher {
	if opts.SearchBaseURL == "" {
		opts.SearchBaseURL = defaultSearchBaseURL
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = defaultScrollStep
	}
	return &Launcher{opts: opts}
}

// Session is a single browser with a single tab rendering a result feed.
// It implements listing.Feed. Close must always be called.
type Session struct {
	opts Options

	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

var _ listing.Feed = (*Session)(nil)

// Open launches a browser. The browser is torn down when ctx is cancelled
// or Close is called, whichever comes first.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Session{opts: l.opts, tabCtx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// Load navigates to the search results for query and dismisses the consent
// wall when one is shown.
func (s *Session) Load(ctx context.Context, query string) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	if s.opts.NavigationTimeout > 0 {
		var cancelNav context.CancelFunc
		runCtx, cancelNav = context.WithTimeout(runCtx, s.opts.NavigationTimeout)
		defer cancelNav()
	}

	searchURL := buildSearchURL(s.opts.SearchBaseURL, query)
	tasks := chromedp.Tasks{
		chromedp.Navigate(searchURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.Evaluate(consentScript, nil).Do(ctx)
		}),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return fmt.Errorf("navigate to %s: %w", searchURL, err)
	}
	return nil
}

func (s *Session) WaitForResults(ctx context.Context) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.WaitReady(firstResultSelector, chromedp.ByQuery))
}

func (s *Session) Snapshot(ctx context.Context) (listing.Snapshot, error) {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(snapshotScript, &html)); err != nil {
		return listing.Snapshot{}, err
	}
	return listing.Snapshot{HTML: html, TakenAt: time.Now()}, nil
}

// Advance scrolls the feed container, or the whole window when the page has
// no feed element.
func (s *Session) Advance(ctx context.Context) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(scrollScript, s.opts.ScrollStep), nil))
}

// Close shuts the tab and the browser process. It is safe to call twice.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.tabCtx)
		s.cancelTab()
		s.cancelAlloc()
	})
	return s.closeErr
}

// bind derives a context that carries the tab and honours ctx's deadline
// and cancellation. Cancelling it leaves the tab open.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	stop := context.AfterFunc(ctx, cancel)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		return runCtx, func() {
			cancelDeadline()
			stop()
			cancel()
		}
	}
	return runCtx, func() {
		stop()
		cancel()
	}
}

func buildSearchURL(base, query string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(strings.TrimSpace(query))
}
