package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voxtype/audio"
	"voxtype/config"
	"voxtype/hotkey"
	"voxtype/inject"
	"voxtype/postprocess"
	"voxtype/storage"
	"voxtype/systray"
	"voxtype/transcribe"
	"voxtype/web"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("VOXTYPE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config failed", "error", err)
		os.Exit(1)
	}
	configPath, _ := config.Path()
	slog.Info("configuration loaded", "path", configPath)

	provider, err := transcribe.NewProvider(cfg.Transcription)
	if err != nil {
		slog.Error("creating transcription provider failed", "error", err, "config", configPath)
		os.Exit(1)
	}

	typer := inject.NewTyper(cfg.Inject.Mode, cfg.Inject.TypeDelayMs)
	if missing := typer.CheckTools(); len(missing) > 0 {
		slog.Warn("missing text injection tools, typing will fail until installed", "tools", missing)
	}

	capture, err := audio.NewCapture(cfg.Audio.SampleRate, time.Duration(cfg.Audio.MaxRecordMs)*time.Millisecond)
	if err != nil {
		slog.Error("initializing audio capture failed", "error", err)
		os.Exit(1)
	}
	defer capture.Close()

	// The device stays running between recordings. Stopping and
	// restarting it races with PipeWire's node teardown and loses the
	// first samples of a recording.
	if err := capture.Resume(); err != nil {
		slog.Error("starting audio capture failed", "error", err)
		os.Exit(1)
	}
	defer capture.Pause()

	listener := hotkey.NewListener()
	if err := listener.Init(cfg.Hotkey.Combo); err != nil {
		// Common on systems where the user lacks the input group.
		// The toggle signal still works without a hotkey.
		slog.Warn("hotkey unavailable, use SIGUSR1 to toggle recording",
			"error", err, "hint", "kill -USR1 $(pidof voxtype)")
		listener = nil
	}

	configDir, err := config.Dir()
	if err != nil {
		slog.Error("resolving config directory failed", "error", err)
		os.Exit(1)
	}

	var pipeline *postprocess.Pipeline
	dict, err := postprocess.LoadDictionary(filepath.Join(configDir, "dictionary.txt"))
	if err != nil {
		slog.Warn("loading dictionary failed", "error", err)
	} else {
		pipeline = postprocess.NewPipeline(
			postprocess.TrimProcessor(),
			postprocess.DictionaryProcessor(dict),
		)
		if n := len(dict.Entries); n > 0 {
			slog.Info("dictionary loaded", "entries", n)
		}
	}

	var store *storage.DB
	if cfg.Storage.Enabled {
		store, err = storage.Open(configDir)
		if err != nil {
			slog.Warn("opening session database failed, history disabled", "error", err)
		} else {
			defer store.Close()
		}
	}

	agent := NewAgent(cfg, capture, edgeSource(listener), provider, typer, pipeline)
	agent.store = store

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var server *web.Server
	if cfg.Web.Enabled {
		server = web.NewServer(store, cfg.Web.Port)
		go func() {
			if err := server.Start(ctx); err != nil {
				slog.Error("web server failed", "error", err)
			}
		}()
	}

	var tray *systray.Manager
	if cfg.Tray.Enabled {
		webPort := 0
		if cfg.Web.Enabled {
			webPort = cfg.Web.Port
		}
		tray = systray.NewManager(webPort, nil)
		go tray.Run()
		go func() {
			select {
			case <-tray.WaitForQuit():
				cancel()
			case <-ctx.Done():
			}
		}()
		defer tray.Stop()
	}

	agent.onState = func(state string) {
		if server != nil {
			server.BroadcastState(state)
		}
		if tray != nil {
			tray.SetState(state)
		}
	}
	agent.onSession = func(s *storage.Session) {
		if server != nil {
			server.BroadcastSession(s)
		}
	}

	// SIGUSR1 toggles recording, for window-manager keybindings and
	// setups where evdev access is unavailable.
	toggleCh := make(chan os.Signal, 1)
	signal.Notify(toggleCh, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case <-toggleCh:
				agent.Toggle()
			case <-ctx.Done():
				return
			}
		}
	}()

	if listener != nil {
		if err := listener.Start(nil); err != nil {
			slog.Error("starting hotkey listener failed", "error", err)
			os.Exit(1)
		}
		defer listener.Stop()
		slog.Info("voxtype started", "hotkey", cfg.Hotkey.Combo,
			"push_to_talk", cfg.Hotkey.PushToTalk, "provider", provider.Name())
	} else {
		slog.Info("voxtype started without hotkey", "provider", provider.Name())
	}

	if err := agent.Run(ctx); err != nil {
		slog.Error("agent error", "error", err)
		os.Exit(1)
	}
	slog.Info("voxtype stopped")
}

// noEdges satisfies the hotkey edge interface when no listener is
// available; the toggle signal is then the only trigger.
type noEdges struct{}

func (noEdges) PollPressed() bool  { return false }
func (noEdges) PollReleased() bool { return false }

func edgeSource(l *hotkey.Listener) hotkeyEdges {
	if l == nil {
		return noEdges{}
	}
	return l
}
