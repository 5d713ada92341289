package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// Segment is a snapshot of recorded audio handed to a transcription
// provider.
type Segment struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playback length of the segment.
func (s Segment) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// ToWAV encodes the segment as a mono 16-bit PCM WAV file.
func (s Segment) ToWAV() ([]byte, error) {
	buf := new(bytes.Buffer)

	dataSize := uint32(len(s.Samples) * 2)
	bitsPerSample := uint16(16)
	blockAlign := uint16(2) // mono, 16-bit
	byteRate := uint32(s.SampleRate) * uint32(blockAlign)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(s.SampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bitsPerSample)

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, v := range s.Samples {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		binary.Write(buf, binary.LittleEndian, int16(v*32767))
	}

	return buf.Bytes(), nil
}

// Capture records microphone audio into a rolling buffer sized for the
// longest allowed recording. The malgo device keeps running between
// recordings; Clear discards buffered samples when a new one starts.
type Capture struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int

	mu   sync.Mutex
	ring *ring
}

// NewCapture initializes the capture device without starting it.
func NewCapture(sampleRate int, maxLen time.Duration) (*Capture, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	c := &Capture{
		malgoCtx:   mctx,
		sampleRate: sampleRate,
		ring:       newRing(int(maxLen.Seconds() * float64(sampleRate))),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onData := func(_, input []byte, frameCount uint32) {
		samples := decodeF32(input, int(frameCount))
		c.mu.Lock()
		c.ring.write(samples)
		c.mu.Unlock()
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	c.device = device

	return c, nil
}

// Resume starts continuous capture.
func (c *Capture) Resume() error {
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}
	return nil
}

// Pause stops capture. Buffered samples are retained.
func (c *Capture) Pause() error {
	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("stopping capture device: %w", err)
	}
	return nil
}

// Clear discards all buffered samples.
func (c *Capture) Clear() {
	c.mu.Lock()
	c.ring.clear()
	c.mu.Unlock()
}

// Get returns a copy of the most recent d of buffered audio, possibly less
// when the buffer holds fewer samples.
func (c *Capture) Get(d time.Duration) []float32 {
	n := int(d.Seconds() * float64(c.sampleRate))
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ring.last(n)
}

// SampleRate returns the capture sample rate in Hz.
func (c *Capture) SampleRate() int {
	return c.sampleRate
}

// Close releases the audio device and context.
func (c *Capture) Close() error {
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.malgoCtx != nil {
		err := c.malgoCtx.Uninit()
		c.malgoCtx.Free()
		c.malgoCtx = nil
		return err
	}
	return nil
}

func decodeF32(input []byte, frames int) []float32 {
	if frames*4 > len(input) {
		frames = len(input) / 4
	}
	samples := make([]float32, frames)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(input[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}
