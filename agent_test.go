package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxtype/audio"
	"voxtype/config"
)

const testRate = 16000

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time        { return c.t }
func (c *fakeClock) sleep(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) at(d time.Duration) time.Time { return time.Unix(1000, 0).Add(d) }

// fakeEdges delivers scheduled press/release edges once the fake clock
// reaches their time.
type fakeEdges struct {
	clock    *fakeClock
	presses  []time.Time
	releases []time.Time
}

func consumeDue(clock *fakeClock, queue *[]time.Time) bool {
	if len(*queue) > 0 && !clock.t.Before((*queue)[0]) {
		*queue = (*queue)[1:]
		return true
	}
	return false
}

func (e *fakeEdges) PollPressed() bool  { return consumeDue(e.clock, &e.presses) }
func (e *fakeEdges) PollReleased() bool { return consumeDue(e.clock, &e.releases) }

type fakeBuffer struct {
	rate    int
	getFn   func(d time.Duration) []float32
	cleared int
}

func (b *fakeBuffer) Clear() { b.cleared++ }
func (b *fakeBuffer) Get(d time.Duration) []float32 {
	if b.getFn == nil {
		return nil
	}
	return b.getFn(d)
}
func (b *fakeBuffer) SampleRate() int { return b.rate }

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Name() string { return "fake" }
func (f *fakeTranscriber) Transcribe(_ context.Context, _ audio.Segment) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeTyper struct {
	typed []string
	err   error
}

func (f *fakeTyper) Type(_ context.Context, text string) error {
	f.typed = append(f.typed, text)
	return f.err
}

type testHarness struct {
	agent  *Agent
	clock  *fakeClock
	edges  *fakeEdges
	buf    *fakeBuffer
	trans  *fakeTranscriber
	typer  *fakeTyper
	states []string
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *testHarness {
	t.Helper()

	cfg := &config.Config{}
	cfg.Audio.SampleRate = testRate
	cfg.Audio.MaxRecordMs = 30000
	cfg.VAD.EnergyThreshold = 0.6
	cfg.VAD.FreqThreshold = 100
	cfg.VAD.SilenceMs = 1500
	cfg.Transcription.Model = "base.en"
	cfg.Transcription.Language = "en"
	if mutate != nil {
		mutate(cfg)
	}

	h := &testHarness{
		clock: newFakeClock(),
		buf:   &fakeBuffer{rate: testRate},
		trans: &fakeTranscriber{text: "hello world"},
		typer: &fakeTyper{},
	}
	h.edges = &fakeEdges{clock: h.clock}

	h.agent = NewAgent(cfg, h.buf, h.edges, h.trans, h.typer, nil)
	h.agent.now = h.clock.now
	h.agent.sleep = h.clock.sleep
	h.agent.onState = func(s string) { h.states = append(h.states, s) }
	return h
}

// loudWindow is a full-length trailing window with signal throughout.
func loudWindow(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 0.5
		} else {
			out[i] = -0.5
		}
	}
	return out
}

// quietTailWindow has signal in its first part and silence in the last
// second.
func quietTailWindow(n int) []float32 {
	out := loudWindow(n)
	for i := n - testRate; i < n; i++ {
		out[i] = 0
	}
	return out
}

func fullWindowLen() int {
	return int(vadWindow.Seconds() * testRate)
}

func TestStopInsideDebounceDropped(t *testing.T) {
	h := newHarness(t, nil)
	// First press starts recording; a bounce arrives 100ms in and a real
	// stop at 301ms.
	h.edges.presses = []time.Time{
		h.clock.at(0),
		h.clock.at(100 * time.Millisecond),
		h.clock.at(301 * time.Millisecond),
	}

	if !h.agent.waitForTrigger(context.Background()) {
		t.Fatal("trigger not detected")
	}
	sess := h.agent.record(context.Background())

	if !sess.speech {
		t.Error("manual stop did not force speech detection")
	}
	// The record loop polls every 100ms, so the 301ms stop lands on the
	// 400ms iteration. The 100ms bounce must not have ended it.
	if sess.duration != 400*time.Millisecond {
		t.Errorf("duration = %v, want 400ms", sess.duration)
	}
	if h.buf.cleared != 1 {
		t.Errorf("buffer cleared %d times, want 1", h.buf.cleared)
	}
}

func TestPushToTalkStopsOnRelease(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Hotkey.PushToTalk = true })
	h.edges.presses = []time.Time{h.clock.at(0)}
	h.edges.releases = []time.Time{h.clock.at(500 * time.Millisecond)}

	if !h.agent.waitForTrigger(context.Background()) {
		t.Fatal("trigger not detected")
	}
	sess := h.agent.record(context.Background())

	if !sess.speech {
		t.Error("release stop did not force speech detection")
	}
	if sess.duration != 500*time.Millisecond {
		t.Errorf("duration = %v, want 500ms", sess.duration)
	}
}

func TestToggleSignalTriggers(t *testing.T) {
	h := newHarness(t, nil)
	h.agent.Toggle()

	if !h.agent.waitForTrigger(context.Background()) {
		t.Fatal("toggle signal did not trigger")
	}
	// The flag is read-and-clear.
	if h.agent.toggle.Load() {
		t.Error("toggle flag not consumed")
	}
}

func TestMaxRecordDuration(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Audio.MaxRecordMs = 1000 })
	h.edges.presses = []time.Time{h.clock.at(0)}

	if !h.agent.waitForTrigger(context.Background()) {
		t.Fatal("trigger not detected")
	}
	sess := h.agent.record(context.Background())

	if sess.duration != 1000*time.Millisecond {
		t.Errorf("duration = %v, want 1s", sess.duration)
	}
	if sess.speech {
		t.Error("timeout without audio should not mark speech")
	}
}

func TestShortBufferNeverFlipsSpeech(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Audio.MaxRecordMs = 1000 })
	// Loud audio, but one sample short of the minimum the activity check
	// requires.
	h.buf.getFn = func(time.Duration) []float32 {
		return loudWindow(testRate * 2)
	}
	h.edges.presses = []time.Time{h.clock.at(0)}

	h.agent.waitForTrigger(context.Background())
	sess := h.agent.record(context.Background())

	if sess.speech {
		t.Error("undersized buffer flipped speech detection")
	}
}

func TestSilenceAutoStop(t *testing.T) {
	h := newHarness(t, nil)
	h.edges.presses = []time.Time{h.clock.at(0)}

	// Speech for the first half second of the session, then a silent
	// tail in every later window.
	start := h.clock.t
	h.buf.getFn = func(time.Duration) []float32 {
		if h.clock.t.Sub(start) < 500*time.Millisecond {
			return loudWindow(fullWindowLen())
		}
		return quietTailWindow(fullWindowLen())
	}

	h.agent.waitForTrigger(context.Background())
	sess := h.agent.record(context.Background())

	if !sess.speech {
		t.Fatal("speech burst not detected")
	}
	// Last voice activity at the 400ms iteration, so silence completes
	// 1500ms later, observed on the 1900ms iteration.
	if sess.duration != 1900*time.Millisecond {
		t.Errorf("duration = %v, want 1.9s", sess.duration)
	}

	h.agent.transcribeAndInject(context.Background(), sess)
	if h.trans.calls != 1 {
		t.Fatalf("transcriber calls = %d, want 1", h.trans.calls)
	}
	if len(h.typer.typed) != 1 || h.typer.typed[0] != "hello world" {
		t.Errorf("typed = %v", h.typer.typed)
	}
}

func TestHallucinationGuard(t *testing.T) {
	h := newHarness(t, nil)
	h.buf.getFn = func(time.Duration) []float32 {
		return loudWindow(testRate)
	}

	h.agent.transcribeAndInject(context.Background(), session{
		start:    h.clock.t,
		duration: 2 * time.Second,
		speech:   false,
	})

	if h.trans.calls != 0 {
		t.Error("transcriber invoked without detected speech")
	}
	if len(h.typer.typed) != 0 {
		t.Error("text injected without detected speech")
	}
	if last := h.states[len(h.states)-1]; last != StateIdle {
		t.Errorf("final state = %q, want idle", last)
	}
}

func TestEmptyBufferSkipsTranscription(t *testing.T) {
	h := newHarness(t, nil)

	h.agent.transcribeAndInject(context.Background(), session{speech: true})

	if h.trans.calls != 0 {
		t.Error("transcriber invoked on an empty buffer")
	}
}

func TestTranscriptionFailureReturnsToIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.trans.err = errors.New("server unreachable")
	h.buf.getFn = func(time.Duration) []float32 {
		return loudWindow(testRate)
	}

	h.agent.transcribeAndInject(context.Background(), session{speech: true})

	if len(h.typer.typed) != 0 {
		t.Error("text injected after a failed transcription")
	}
	if last := h.states[len(h.states)-1]; last != StateIdle {
		t.Errorf("final state = %q, want idle", last)
	}
}

func TestWhitespaceOnlyTranscriptionNotTyped(t *testing.T) {
	h := newHarness(t, nil)
	h.trans.text = "  \n "
	h.buf.getFn = func(time.Duration) []float32 {
		return loudWindow(testRate)
	}

	h.agent.transcribeAndInject(context.Background(), session{speech: true})

	if h.trans.calls != 1 {
		t.Fatalf("transcriber calls = %d, want 1", h.trans.calls)
	}
	if len(h.typer.typed) != 0 {
		t.Errorf("typed = %v, want nothing", h.typer.typed)
	}
}
