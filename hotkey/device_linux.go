//go:build linux

package hotkey

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evKey  = 0x01
	evMax  = 0x1f
	keyMax = 0x2ff

	// input_event on 64-bit Linux: timeval (16) + type (2) + code (2) + value (4).
	eventSize = 24
)

// ioctl request numbers from linux/input.h, _IOC(_IOC_READ, 'E', nr, len).
func eviocgbit(ev, length int) uint {
	return uint(2<<30 | length<<16 | 'E'<<8 | (0x20 + ev))
}

func eviocgname(length int) uint {
	return uint(2<<30 | length<<16 | 'E'<<8 | 0x06)
}

func ioctlGetBytes(fd int, req uint, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// capabilities answers typed questions about a device's capability bitmaps,
// so nothing outside this type touches the raw bitfield layout.
type capabilities struct {
	fd int
}

// supportsKeyEvents reports whether the device emits EV_KEY events at all.
func (c capabilities) supportsKeyEvents() bool {
	var bits [evMax/8 + 1]byte
	if err := ioctlGetBytes(c.fd, eviocgbit(0, len(bits)), bits[:]); err != nil {
		return false
	}
	return hasBit(bits[:], evKey)
}

// hasLetterA reports whether the device can produce the letter A. Power
// buttons and touchpads advertise EV_KEY too; a device without KEY_A is not
// a keyboard.
func (c capabilities) hasLetterA() bool {
	var bits [keyMax/8 + 1]byte
	if err := ioctlGetBytes(c.fd, eviocgbit(evKey, len(bits)), bits[:]); err != nil {
		return false
	}
	return hasBit(bits[:], int(keyA))
}

func hasBit(bits []byte, n int) bool {
	return bits[n/8]>>(uint(n)%8)&1 == 1
}

func deviceName(fd int) string {
	var buf [256]byte
	if err := ioctlGetBytes(fd, eviocgname(len(buf)), buf[:]); err != nil {
		return "unknown"
	}
	if i := bytes.IndexByte(buf[:], 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf[:])
}

// evdevDevice is one open /dev/input/event* handle. The raw fd is kept
// instead of an os.File so O_NONBLOCK survives; os.File.Fd() would hand the
// descriptor back to the runtime poller in blocking mode.
type evdevDevice struct {
	fd   int
	path string
	name string
}

func (d *evdevDevice) Name() string { return d.name }

func (d *evdevDevice) Close() error { return unix.Close(d.fd) }

// ReadEvent returns the next key transition, skipping non-key events.
// ErrNoEvents means the queue is drained; ErrDeviceGone means the device
// disappeared and the caller should rescan.
func (d *evdevDevice) ReadEvent() (Event, error) {
	var raw [eventSize]byte
	for {
		n, err := unix.Read(d.fd, raw[:])
		if err != nil {
			switch err {
			case unix.EAGAIN:
				return Event{}, ErrNoEvents
			case unix.EIO, unix.ENODEV:
				return Event{}, ErrDeviceGone
			}
			return Event{}, fmt.Errorf("reading %s: %w", d.path, err)
		}
		if n < eventSize {
			return Event{}, ErrNoEvents
		}

		if binary.LittleEndian.Uint16(raw[16:]) != evKey {
			continue
		}
		return Event{
			Code:  Code(binary.LittleEndian.Uint16(raw[18:])),
			Value: int32(binary.LittleEndian.Uint32(raw[20:])),
		}, nil
	}
}

// evdevScanner enumerates /dev/input and keeps only genuine keyboards.
type evdevScanner struct{}

// NewListener returns a listener backed by raw /dev/input keyboard devices.
func NewListener() *Listener {
	return newListener(evdevScanner{})
}

func (evdevScanner) Scan() ([]deviceReader, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("reading /dev/input: %w", err)
	}

	var devices []deviceReader
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join("/dev/input", e.Name())

		// Open failures (permissions, hot-unplug race) skip the device.
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}

		caps := capabilities{fd: fd}
		if !caps.supportsKeyEvents() || !caps.hasLetterA() {
			unix.Close(fd)
			continue
		}

		name := deviceName(fd)
		slog.Info("opened keyboard device", "path", path, "name", name)
		devices = append(devices, &evdevDevice{fd: fd, path: path, name: name})
	}

	return devices, nil
}
