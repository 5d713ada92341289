package main

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"voxtype/audio"
	"voxtype/config"
	"voxtype/postprocess"
	"voxtype/storage"
)

const (
	// Stop triggers inside this window after recording starts are the
	// tail of the same physical keypress, not a user-intended stop.
	stopDebounce = 300 * time.Millisecond

	idleSleep   = 50 * time.Millisecond
	recordSleep = 100 * time.Millisecond

	// Voice activity runs on a trailing window, comparing the energy of
	// the last second against the whole window. The window is fetched
	// slightly longer than the two-second sample minimum so the check
	// stays skipped until a full window is buffered.
	vadWindow = 2200 * time.Millisecond
	vadTailMs = 1000
)

// Dictation states reported to the dashboard and tray.
const (
	StateIdle         = "idle"
	StateRecording    = "recording"
	StateTranscribing = "transcribing"
)

type audioBuffer interface {
	Clear()
	Get(d time.Duration) []float32
	SampleRate() int
}

type hotkeyEdges interface {
	PollPressed() bool
	PollReleased() bool
}

type transcriber interface {
	Name() string
	Transcribe(ctx context.Context, seg audio.Segment) (string, error)
}

type injector interface {
	Type(ctx context.Context, text string) error
}

// Agent is the dictation control loop: Idle until a hotkey edge, then
// Recording until a stop condition, then Transcribing, then back to
// Idle.
type Agent struct {
	audio    audioBuffer
	edges    hotkeyEdges
	provider transcriber
	typer    injector
	pipeline *postprocess.Pipeline

	pushToTalk  bool
	silence     time.Duration
	maxRecord   time.Duration
	energyThold float32
	freqThold   float32

	model    string
	language string

	store     *storage.DB
	onState   func(state string)
	onSession func(s *storage.Session)

	toggle atomic.Bool

	// Injectable clock. Tests substitute a fake; production uses
	// time.Now and time.Sleep.
	now   func() time.Time
	sleep func(d time.Duration)
}

// NewAgent wires the state machine to its collaborators. store,
// onState, and onSession may be nil.
func NewAgent(cfg *config.Config, buf audioBuffer, edges hotkeyEdges, provider transcriber, typer injector, pipeline *postprocess.Pipeline) *Agent {
	return &Agent{
		audio:       buf,
		edges:       edges,
		provider:    provider,
		typer:       typer,
		pipeline:    pipeline,
		pushToTalk:  cfg.Hotkey.PushToTalk,
		silence:     time.Duration(cfg.VAD.SilenceMs) * time.Millisecond,
		maxRecord:   time.Duration(cfg.Audio.MaxRecordMs) * time.Millisecond,
		energyThold: cfg.VAD.EnergyThreshold,
		freqThold:   cfg.VAD.FreqThreshold,
		model:       cfg.Transcription.Model,
		language:    cfg.Transcription.Language,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Toggle requests a start or stop as if the hotkey had been pressed.
// Safe to call from a signal handler goroutine.
func (a *Agent) Toggle() {
	a.toggle.Store(true)
}

func (a *Agent) setState(state string) {
	if a.onState != nil {
		a.onState(state)
	}
}

// Run drives the state machine until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	a.setState(StateIdle)
	for {
		if !a.waitForTrigger(ctx) {
			return nil
		}
		sess := a.record(ctx)
		if ctx.Err() != nil {
			return nil
		}
		a.transcribeAndInject(ctx, sess)
	}
}

// waitForTrigger blocks in Idle until a hotkey press or toggle signal.
// Returns false on shutdown.
func (a *Agent) waitForTrigger(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		if a.edges.PollPressed() || a.toggle.Swap(false) {
			return true
		}
		a.sleep(idleSleep)
	}
}

type session struct {
	start    time.Time
	duration time.Duration
	speech   bool
}

// record runs the Recording state until a stop condition fires.
func (a *Agent) record(ctx context.Context) session {
	slog.Info("recording started", "push_to_talk", a.pushToTalk)
	a.setState(StateRecording)

	a.audio.Clear()
	// Drain edges left over from the triggering keypress so it cannot
	// double as a stop.
	a.edges.PollPressed()
	a.edges.PollReleased()

	sess := session{start: a.now()}
	silenceStart := sess.start
	minSamples := a.audio.SampleRate()*2 + 1

	for {
		if ctx.Err() != nil {
			break
		}
		elapsed := a.now().Sub(sess.start)

		var stop bool
		if a.pushToTalk {
			stop = a.edges.PollReleased()
		} else {
			stop = a.edges.PollPressed() || a.toggle.Swap(false)
		}
		if stop {
			if elapsed < stopDebounce {
				// Dropped, not deferred.
				slog.Debug("stop inside debounce window ignored", "elapsed", elapsed)
			} else {
				// A manual stop always transcribes.
				sess.speech = true
				sess.duration = elapsed
				slog.Info("recording stopped", "duration", elapsed)
				return sess
			}
		}

		if elapsed >= a.maxRecord {
			sess.duration = elapsed
			slog.Info("max recording length reached", "duration", elapsed)
			return sess
		}

		// Too few samples would make the energy check report silence
		// as a false default, so skip it entirely.
		window := a.audio.Get(vadWindow)
		if len(window) >= minSamples {
			if !audio.Silent(window, a.audio.SampleRate(), vadTailMs, a.energyThold, a.freqThold) {
				sess.speech = true
				silenceStart = a.now()
			} else if sess.speech && a.now().Sub(silenceStart) >= a.silence {
				sess.duration = elapsed
				slog.Info("silence detected, stopping", "duration", elapsed)
				return sess
			}
		}

		a.sleep(recordSleep)
	}

	sess.duration = a.now().Sub(sess.start)
	return sess
}

// transcribeAndInject runs the Transcribing state and returns to Idle.
func (a *Agent) transcribeAndInject(ctx context.Context, sess session) {
	defer a.setState(StateIdle)

	samples := a.audio.Get(a.maxRecord)
	if len(samples) == 0 || !sess.speech {
		// Transcribing silence makes the model hallucinate text.
		slog.Info("no speech detected, skipping transcription")
		return
	}

	a.setState(StateTranscribing)
	seg := audio.Segment{Samples: samples, SampleRate: a.audio.SampleRate()}

	record := &storage.Session{
		RecordingMs: sess.duration.Milliseconds(),
		Provider:    a.provider.Name(),
		Model:       a.model,
		Language:    a.language,
	}

	transcribeStart := a.now()
	text, err := a.provider.Transcribe(ctx, seg)
	record.TranscriptionMs = a.now().Sub(transcribeStart).Milliseconds()
	if err != nil {
		slog.Error("transcription failed", "error", err)
		record.Error = err.Error()
		a.saveSession(record)
		return
	}

	if a.pipeline != nil {
		if processed, err := a.pipeline.Process(ctx, text); err != nil {
			slog.Warn("post-processing failed, using raw text", "error", err)
		} else {
			text = processed
		}
	}
	text = strings.TrimSpace(text)

	record.Text = text
	record.CountText()

	if text == "" {
		slog.Info("empty transcription, nothing to type")
		record.Success = true
		a.saveSession(record)
		return
	}

	slog.Info("transcribed", "words", record.WordCount, "duration", sess.duration)

	injectStart := a.now()
	if err := a.typer.Type(ctx, text); err != nil {
		slog.Error("typing text failed", "error", err)
		record.Error = err.Error()
		a.saveSession(record)
		return
	}
	record.InjectionMs = a.now().Sub(injectStart).Milliseconds()
	record.Success = true
	a.saveSession(record)
}

func (a *Agent) saveSession(s *storage.Session) {
	if a.store != nil {
		s.Timestamp = a.now()
		if err := a.store.SaveSession(s); err != nil {
			slog.Error("saving session failed", "error", err)
		}
	}
	if a.onSession != nil {
		a.onSession(s)
	}
}
