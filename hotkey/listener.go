package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one decoded key transition read from an input device.
type Event struct {
	Code  Code
	Value int32 // 1 = press, 0 = release, anything else is auto-repeat
}

// Sentinel errors reported by device readers.
var (
	// ErrNoEvents means the device queue is drained for this cycle. This is
	// the expected steady-state result of a non-blocking read, not a fault.
	ErrNoEvents = errors.New("no events pending")

	// ErrDeviceGone means the device disappeared (unplugged, suspended
	// wireless receiver) and the whole device set needs a rescan.
	ErrDeviceGone = errors.New("input device gone")
)

// deviceReader drains key events from one open input device.
type deviceReader interface {
	ReadEvent() (Event, error)
	Name() string
	Close() error
}

// deviceScanner enumerates the keyboard devices currently attached.
type deviceScanner interface {
	Scan() ([]deviceReader, error)
}

const (
	// Fixed sleep instead of blocking on fd readiness: the audio capture
	// thread in the same process is latency-sensitive, and contending with
	// it for kernel polling resources causes dropouts. 20ms is fast enough
	// for a hotkey.
	pollInterval = 20 * time.Millisecond

	// How long to wait between rescan attempts when no keyboard is present.
	rescanBackoff = 5 * time.Second

	// The backoff is sliced so Stop is not delayed by a full backoff period.
	backoffSlice = 100 * time.Millisecond
)

// Listener watches all attached keyboards for a single hotkey combination.
//
// Edges are surfaced two ways: through an optional callback invoked on the
// listener goroutine, and through PollPressed/PollReleased read-and-clear
// flags for polling from another goroutine. Both fire for the same logical
// edge, and each edge is observable at most once per activation.
type Listener struct {
	spec    Spec
	scanner deviceScanner
	devices []deviceReader
	mods    modifierState

	running        atomic.Bool
	pressPending   atomic.Bool
	releasePending atomic.Bool

	callback func(pressed bool)
	wg       sync.WaitGroup

	poll    time.Duration
	backoff time.Duration
}

func newListener(scanner deviceScanner) *Listener {
	return &Listener{
		scanner: scanner,
		poll:    pollInterval,
		backoff: rescanBackoff,
	}
}

// Init parses the combo string and performs the initial device scan. On
// failure nothing is started and the listener holds no resources.
func (l *Listener) Init(combo string) error {
	spec, err := ParseSpec(combo)
	if err != nil {
		return err
	}

	devices, err := l.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scanning input devices: %w", err)
	}
	if len(devices) == 0 {
		return errors.New("no keyboard devices found (is the user in the 'input' group?)")
	}

	l.spec = spec
	l.devices = devices
	slog.Info("hotkey registered", "combo", combo, "key", spec.Key, "mods", spec.Mods, "devices", len(devices))
	return nil
}

// Start spawns the background polling goroutine. The callback may be nil;
// poll-based consumers use PollPressed/PollReleased instead.
func (l *Listener) Start(callback func(pressed bool)) error {
	if l.running.Load() {
		return errors.New("listener already running")
	}
	if len(l.devices) == 0 {
		return errors.New("listener not initialized")
	}

	l.callback = callback
	l.running.Store(true)
	l.wg.Add(1)
	go l.listen()
	return nil
}

// Stop signals the goroutine to exit, waits for it, and closes all device
// handles. Safe to call more than once, and on a listener that never started.
func (l *Listener) Stop() {
	if !l.running.Load() && len(l.devices) == 0 {
		return
	}
	l.running.Store(false)
	l.wg.Wait()
	l.closeDevices()
}

// PollPressed reports whether an activation edge occurred since the last
// call, consuming the flag.
func (l *Listener) PollPressed() bool {
	return l.pressPending.Swap(false)
}

// PollReleased reports whether a deactivation edge occurred since the last
// call, consuming the flag.
func (l *Listener) PollReleased() bool {
	return l.releasePending.Swap(false)
}

func (l *Listener) closeDevices() {
	for _, dev := range l.devices {
		dev.Close()
	}
	l.devices = nil
}

func (l *Listener) listen() {
	defer l.wg.Done()

	active := false
	needsRescan := false

	for l.running.Load() {
		if needsRescan {
			needsRescan = false

			// Modifier state is unreliable after a device-set change:
			// releases on a vanished device were never delivered.
			l.mods.reset()
			active = false

			slog.Info("input device change detected, rescanning")
			l.closeDevices()
			devices, err := l.scanner.Scan()
			if err == nil && len(devices) > 0 {
				l.devices = devices
				slog.Info("rescan complete", "devices", len(devices))
			} else {
				slog.Warn("rescan found no keyboard devices, retrying")
				for waited := time.Duration(0); waited < l.backoff && l.running.Load(); waited += backoffSlice {
					time.Sleep(backoffSlice)
				}
				needsRescan = true
			}
			continue
		}

		time.Sleep(l.poll)

		for _, dev := range l.devices {
			for {
				ev, err := dev.ReadEvent()
				if err != nil {
					if errors.Is(err, ErrDeviceGone) {
						slog.Warn("input device disconnected", "device", dev.Name())
						needsRescan = true
					}
					break
				}
				active = l.handleEvent(ev, active)
			}
		}
	}
}

func (l *Listener) handleEvent(ev Event, active bool) bool {
	pressed := ev.Value == 1
	released := ev.Value == 0
	if !pressed && !released {
		// Firmware auto-repeat; the not-already-active check below handles
		// duplicate press delivery, repeats are dropped outright.
		return active
	}

	if isModifier(ev.Code) {
		l.mods.update(ev.Code, pressed)
	}

	if ev.Code == l.spec.Key {
		if pressed && !active && l.mods.matches(l.spec.Mods) {
			l.fire(true)
			return true
		}
		if released && active {
			l.fire(false)
			return false
		}
	}

	// Releasing a required modifier cancels an active hotkey even though no
	// release event arrived for the trigger key itself.
	if released && active && isModifier(ev.Code) && !l.mods.matches(l.spec.Mods) {
		l.fire(false)
		return false
	}

	return active
}

func (l *Listener) fire(pressed bool) {
	if pressed {
		l.pressPending.Store(true)
	} else {
		l.releasePending.Store(true)
	}
	if l.callback != nil {
		l.callback(pressed)
	}
}
