package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/logger"
)

// Config holds browser automation configuration
type Config struct {
	Headless    bool
	ChromePath  string
	NavTimeout  time.Duration
	UserDataDir string
}

// Session owns one Chrome instance. Navigation serializes through it; each
// logical operation opens its own page.
type Session struct {
	browser *rod.Browser
	logger  logger.Logger
	cfg     Config
}

// Connect launches Chrome and connects the control channel.
// Failures here are startup failures: the caller must not continue.
func Connect(cfg Config, log logger.Logger) (*Session, error) {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}

	launch := launcher.New().Headless(cfg.Headless)
	if cfg.ChromePath != "" {
		launch = launch.Bin(cfg.ChromePath)
	}
	if cfg.UserDataDir != "" {
		launch = launch.UserDataDir(cfg.UserDataDir)
	}

	controlURL, err := launch.Launch()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStartup, "failed to launch chrome", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStartup, "failed to connect to chrome", err)
	}

	log.InfoWithFields("browser connected", map[string]interface{}{
		"headless": cfg.Headless,
	})

	return &Session{browser: browser, logger: log, cfg: cfg}, nil
}

// Close shuts the browser down
func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	return s.browser.Close()
}

// NewPage opens a fresh blank page
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeTransport, "failed to open page", err)
	}
	return &Page{page: page.Context(ctx), navTimeout: s.cfg.NavTimeout}, nil
}

// Page wraps one browser tab
type Page struct {
	page       *rod.Page
	navTimeout time.Duration
}

// Navigate loads the URL and waits for the load event
func (p *Page) Navigate(url string) error {
	if err := p.page.Timeout(p.navTimeout).Navigate(url); err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "navigation failed", err)
	}
	// Best effort: dynamic listing pages keep loading after the event fires
	_ = p.page.Timeout(p.navTimeout).WaitLoad()
	return nil
}

// URL returns the page's current location
func (p *Page) URL() (string, error) {
	res, err := p.page.Evaluate(&rod.EvalOptions{
		JS:      `() => document.location.href`,
		ByValue: true,
	})
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// ScrollToBottom scrolls the window to the document end, triggering
// infinite-scroll pagination
func (p *Page) ScrollToBottom() error {
	_, err := p.page.Evaluate(&rod.EvalOptions{
		JS:      `() => window.scrollTo({ top: document.body.scrollHeight, behavior: 'smooth' })`,
		ByValue: true,
	})
	return err
}

// WaitElement blocks until the selector appears or the timeout elapses
func (p *Page) WaitElement(selector string, timeout time.Duration) (*Element, error) {
	el, err := p.page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, err
	}
	return &Element{el: el}, nil
}

// AttachTap begins buffering response bodies whose URL satisfies match
func (p *Page) AttachTap(match func(url string) bool) *Tap {
	return attachTap(p.page, match)
}

// Close closes the tab
func (p *Page) Close() error {
	return p.page.Close()
}

// Element wraps one DOM element handle
type Element struct {
	el *rod.Element
}

// Click performs a single left click
func (e *Element) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

// Text returns the element's visible text
func (e *Element) Text() (string, error) {
	return e.el.Text()
}
