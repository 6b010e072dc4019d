// Package browser owns the Chrome connection: launching or attaching to an
// instance over the DevTools protocol and opening the page VoxMate operates
// on.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"voxmate/internal/config"
	"voxmate/internal/logging"
)

// Manager holds one browser connection and the pages opened through it.
type Manager struct {
	cfg config.BrowserConfig

	mu         sync.RWMutex
	browser    *rod.Browser
	controlURL string
	pages      []*rod.Page
}

// NewManager creates a disconnected manager.
func NewManager(cfg config.BrowserConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Start connects to the configured debugger URL, or launches a browser when
// none is set. Reconnects if a previous connection went stale.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.Browser("stale browser connection, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.pages = nil
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(m.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("no debugger_url and failed to launch: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	logging.Browser("connected to %s", controlURL)
	return nil
}

func (m *Manager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// ControlURL returns the WebSocket debugger URL.
func (m *Manager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// Open navigates a new page to url and waits for it to load.
func (m *Manager) Open(ctx context.Context, url string) (*rod.Page, error) {
	if err := m.ensureStarted(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return nil, errors.New("browser not connected")
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	timeout := m.cfg.NavigationTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("load %s: %w", url, err)
	}

	m.mu.Lock()
	m.pages = append(m.pages, page)
	m.mu.Unlock()
	logging.Browser("opened %s", url)
	return page, nil
}

// Shutdown closes opened pages and the browser connection.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, page := range m.pages {
		_ = page.Close()
	}
	m.pages = nil

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	return err
}
