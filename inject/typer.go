// Package inject delivers transcribed text into the focused application,
// either by a clipboard paste or by synthesized keystrokes.
package inject

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	cmdTimeout    = 5 * time.Second
	clipboardWait = 50 * time.Millisecond
	pasteSettle   = 300 * time.Millisecond
)

// Terminal emulators paste with ctrl+shift+v; ctrl+v would send a
// literal control character instead.
var terminalClasses = []string{
	"gnome-terminal",
	"konsole",
	"xterm",
	"alacritty",
	"kitty",
	"terminator",
	"tilix",
	"xfce4-terminal",
	"urxvt",
	"st-256color",
	"foot",
	"wezterm",
}

// Typer injects text into the active window.
type Typer struct {
	UseClipboard bool
	TypeDelay    time.Duration
	wayland      bool
}

// NewTyper creates a typer. Mode is "clipboard" or "type".
func NewTyper(mode string, typeDelayMs int) *Typer {
	return &Typer{
		UseClipboard: mode != "type",
		TypeDelay:    time.Duration(typeDelayMs) * time.Millisecond,
		wayland:      onWayland(),
	}
}

// onWayland reports whether we are on a Wayland session without an X
// bridge. XWayland still exposes DISPLAY, in which case the X tools work.
func onWayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" && os.Getenv("DISPLAY") == ""
}

// CheckTools verifies that the external commands the typer needs are
// installed, returning a list of missing ones.
func (t *Typer) CheckTools() []string {
	var needed []string
	if t.wayland {
		needed = append(needed, "wtype")
		if t.UseClipboard {
			needed = append(needed, "wl-copy")
		}
	} else {
		needed = append(needed, "xdotool")
		if t.UseClipboard {
			needed = append(needed, "xclip")
		}
	}

	var missing []string
	for _, tool := range needed {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Type injects text into the currently focused window.
func (t *Typer) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	if t.UseClipboard {
		return t.typeViaClipboard(ctx, text)
	}
	return t.typeDirect(ctx, text)
}

func (t *Typer) typeDirect(ctx context.Context, text string) error {
	if t.wayland {
		return runCmd(ctx, "wtype", "-d", strconv.Itoa(int(t.TypeDelay.Milliseconds())), "--", text)
	}
	return runCmd(ctx, "xdotool", "type", "--clearmodifiers",
		"--delay", strconv.Itoa(int(t.TypeDelay.Milliseconds())), "--", text)
}

// typeViaClipboard stashes the user's clipboard, replaces it with the
// text, sends a paste keystroke, and restores the original contents.
func (t *Typer) typeViaClipboard(ctx context.Context, text string) error {
	if t.wayland {
		// wl-copy has no read-back that survives our own write, so the
		// previous clipboard is not restored on Wayland.
		if err := setClipboardWayland(ctx, text); err != nil {
			return err
		}
		time.Sleep(clipboardWait)
		return runCmd(ctx, "wtype", "-M", "ctrl", "-P", "v", "-p", "v", "-m", "ctrl")
	}

	saved, err := getClipboard(ctx)
	if err != nil {
		// Empty clipboards make xclip exit nonzero. Treat as empty.
		saved = ""
	}

	if err := setClipboard(ctx, text); err != nil {
		return fmt.Errorf("setting clipboard: %w", err)
	}
	time.Sleep(clipboardWait)

	keys := "ctrl+v"
	if class, err := activeWindowClass(ctx); err == nil && isTerminalClass(class) {
		keys = "ctrl+shift+v"
	}
	if err := runCmd(ctx, "xdotool", "key", "--clearmodifiers", keys); err != nil {
		return fmt.Errorf("sending paste keystroke: %w", err)
	}

	// Let the application read the selection before we put the old
	// contents back.
	time.Sleep(pasteSettle)
	if saved != "" {
		if err := setClipboard(ctx, saved); err != nil {
			slog.Warn("restoring clipboard failed", "error", err)
		}
	}
	return nil
}

// activeWindowClass returns the WM_CLASS of the focused X window.
func activeWindowClass(ctx context.Context) (string, error) {
	id, err := outputCmd(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return "", err
	}
	class, err := outputCmd(ctx, "xdotool", "getwindowclassname", strings.TrimSpace(id))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(class), nil
}

func isTerminalClass(class string) bool {
	class = strings.ToLower(class)
	for _, term := range terminalClasses {
		if strings.Contains(class, term) {
			return true
		}
	}
	return false
}

func getClipboard(ctx context.Context) (string, error) {
	return outputCmd(ctx, "xclip", "-selection", "clipboard", "-o")
}

func setClipboard(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "xclip", "-selection", "clipboard", "-i")
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("xclip: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func setClipboardWayland(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "wl-copy")
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wl-copy: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func runCmd(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func outputCmd(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}
