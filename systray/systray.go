// Package systray shows a tray icon with a state indicator and quick
// access to the web dashboard.
package systray

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/getlantern/systray"
)

// Manager owns the tray icon lifecycle.
type Manager struct {
	webPort  int
	iconData []byte
	quit     chan struct{}
	state    chan string
}

// NewManager creates a tray manager. webPort of 0 hides the dashboard
// menu entry.
func NewManager(webPort int, iconData []byte) *Manager {
	return &Manager{
		webPort:  webPort,
		iconData: iconData,
		quit:     make(chan struct{}),
		state:    make(chan string, 4),
	}
}

// Run starts the tray loop. It blocks and must run on the main thread
// on some desktops, so callers usually run it in a dedicated goroutine
// last.
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop removes the tray icon.
func (m *Manager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel closed when the user picks Quit.
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// SetState updates the tooltip to reflect the dictation state.
func (m *Manager) SetState(state string) {
	select {
	case m.state <- state:
	default:
	}
}

func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}
	systray.SetTitle("voxtype")
	systray.SetTooltip("voxtype: idle")

	var dashboard *systray.MenuItem
	if m.webPort > 0 {
		dashboard = systray.AddMenuItem("Open Dashboard", "Open the voxtype dashboard")
		systray.AddSeparator()
	}
	quit := systray.AddMenuItem("Quit", "Exit voxtype")

	go func() {
		dashboardClicks := make(<-chan struct{})
		if dashboard != nil {
			dashboardClicks = dashboard.ClickedCh
		}
		for {
			select {
			case state := <-m.state:
				systray.SetTooltip("voxtype: " + state)
			case <-dashboardClicks:
				m.openDashboard()
			case <-quit.ClickedCh:
				slog.Info("quit requested from tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (m *Manager) onExit() {
	slog.Debug("tray exited")
}

func (m *Manager) openDashboard() {
	url := fmt.Sprintf("http://127.0.0.1:%d", m.webPort)
	if err := exec.Command("xdg-open", url).Start(); err != nil {
		slog.Error("opening dashboard failed", "url", url, "error", err)
	}
}
