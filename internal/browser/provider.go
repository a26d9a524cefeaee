// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package browser owns the playwright session the console page objects drive.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/orch-library/go/dazl"
	"github.com/playwright-community/playwright-go"
)

var log = dazl.GetPackageLogger()

// ErrUnavailable is returned by Setup when no playwright driver or browser can be started
var ErrUnavailable = errors.New("playwright unavailable")

type Options struct {
	Browser           string
	Headless          bool
	DefaultTimeout    time.Duration
	ScreenshotDir     string
	IgnoreHTTPSErrors bool
	// download driver and browser before starting
	Install bool
}

func OptionsFromConfig(cfg config.Configuration) Options {
	return Options{
		Browser:           cfg.Browser,
		Headless:          cfg.Headless,
		DefaultTimeout:    cfg.DefaultTimeout,
		ScreenshotDir:     cfg.ScreenshotDir,
		IgnoreHTTPSErrors: cfg.InsecureSkipVerify,
		Install:           os.Getenv("PLAYWRIGHT_INSTALL") == "1",
	}
}

// Provider is one browser with one page
type Provider struct {
	opts Options

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	// bounds the page waits of one session, cancelled by TearDown
	session context.Context
	cancel  context.CancelFunc

	screenshots []string
}

func NewProvider(opts Options) *Provider {
	if opts.Browser == "" {
		opts.Browser = config.BrowserChromium
	}
	if opts.DefaultTimeout == 0 {
		opts.DefaultTimeout = 30 * time.Second
	}
	return &Provider{opts: opts}
}

// Setup starts playwright, launches the browser and opens a page. Page waits end with ctx.
func (p *Provider) Setup(ctx context.Context) error {
	p.session, p.cancel = context.WithCancel(ctx)
	if p.opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{p.opts.Browser}}); err != nil {
			return fmt.Errorf("%w: installing %s: %v", ErrUnavailable, p.opts.Browser, err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.pw = pw

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.opts.Headless),
	}
	var browserType playwright.BrowserType
	switch p.opts.Browser {
	case config.BrowserFirefox:
		browserType = pw.Firefox
	case config.BrowserWebkit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}
	browser, err := browserType.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		p.pw = nil
		return fmt.Errorf("%w: launching %s: %v", ErrUnavailable, p.opts.Browser, err)
	}
	p.browser = browser

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(p.opts.IgnoreHTTPSErrors),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		_ = p.TearDown()
		return fmt.Errorf("could not create context: %w", err)
	}
	p.context = bctx
	ms := float64(p.opts.DefaultTimeout.Milliseconds())
	bctx.SetDefaultTimeout(ms)
	bctx.SetDefaultNavigationTimeout(ms)

	page, err := bctx.NewPage()
	if err != nil {
		_ = p.TearDown()
		return fmt.Errorf("could not create page: %w", err)
	}
	p.page = page
	log.Infof("Started %s (headless %t)", p.opts.Browser, p.opts.Headless)
	return nil
}

// TearDown closes page, context, browser and driver; safe to call on a partial setup
func (p *Provider) TearDown() error {
	if p.cancel != nil {
		p.cancel()
	}
	var errs []error
	if p.context != nil {
		errs = append(errs, p.context.Close())
		p.context = nil
		p.page = nil
	}
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
		p.browser = nil
	}
	if p.pw != nil {
		errs = append(errs, p.pw.Stop())
		p.pw = nil
	}
	return errors.Join(errs...)
}

func (p *Provider) Page() playwright.Page {
	return p.page
}

func (p *Provider) Options() Options {
	return p.opts
}

// Context is done once the Setup context is done or the browser is torn down
func (p *Provider) Context() context.Context {
	if p.session == nil {
		return context.Background()
	}
	return p.session
}

// Open navigates to url and waits for the DOM
func (p *Provider) Open(url string) error {
	log.Infof("Opening %s", url)
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *Provider) RefreshPage() error {
	log.Info("Web page is going to be refreshed")
	if _, err := p.page.Reload(playwright.PageReloadOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded}); err != nil {
		return fmt.Errorf("refreshing page: %w", err)
	}
	return nil
}

func (p *Provider) Title() (string, error) {
	return p.page.Title()
}

// GetWebElement waits until the first element matched by l is visible
func (p *Provider) GetWebElement(l playwright.Locator) (playwright.Locator, error) {
	return p.GetWebElementWithin(l, p.opts.DefaultTimeout)
}

func (p *Provider) GetWebElementWithin(l playwright.Locator, timeout time.Duration) (playwright.Locator, error) {
	first := l.First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		title, _ := p.page.Title()
		log.Warnf("Element not visible on %s (%s): %v", p.page.URL(), title, err)
		return nil, err
	}
	return first, nil
}

// IsPresent reports whether l matches at least one element right now
func (p *Provider) IsPresent(l playwright.Locator) bool {
	count, err := l.Count()
	return err == nil && count > 0
}

// IsVisible reports whether the first element of l is displayed right now
func (p *Provider) IsVisible(l playwright.Locator) bool {
	visible, err := l.First().IsVisible()
	return err == nil && visible
}

func (p *Provider) ClickOnItem(l playwright.Locator, description string) error {
	el, err := p.GetWebElement(l)
	if err != nil {
		return fmt.Errorf("%s not clickable: %w", description, err)
	}
	log.Infof("Click on button: %s", description)
	if err := el.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", description, err)
	}
	return nil
}

func (p *Provider) FillInputItem(l playwright.Locator, text string) error {
	el, err := p.GetWebElement(l)
	if err != nil {
		return fmt.Errorf("input not visible: %w", err)
	}
	log.Infof("Filling input with text: %s", text)
	if err := el.Fill(text); err != nil {
		return fmt.Errorf("filling input: %w", err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// TakeScreenShot writes a full page png to the screenshot directory and returns its path
func (p *Provider) TakeScreenShot(name string) (string, error) {
	if p.page == nil {
		return "", fmt.Errorf("no page to capture")
	}
	if err := os.MkdirAll(p.opts.ScreenshotDir, 0o755); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("%02d-%s.png", len(p.screenshots)+1, strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_"))
	path := filepath.Join(p.opts.ScreenshotDir, fileName)
	if _, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("taking screenshot %s: %w", path, err)
	}
	log.Infof("Screenshot stored in %s", path)
	p.screenshots = append(p.screenshots, path)
	return path, nil
}

// Screenshots lists every screenshot taken by this provider
func (p *Provider) Screenshots() []string {
	return p.screenshots
}
