package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"voxmate/internal/broker"
	"voxmate/internal/browser"
	"voxmate/internal/capability"
	"voxmate/internal/command"
	"voxmate/internal/config"
	"voxmate/internal/dispatch"
	"voxmate/internal/logging"
	"voxmate/internal/notify"
	"voxmate/internal/page"
	"voxmate/internal/reading"
	"voxmate/internal/speech"
	"voxmate/internal/store"
	"voxmate/internal/voice"
)

// App wires the page-side actor and the background coordinator together for
// one browser page.
type App struct {
	Store      *store.Store
	Broker     *broker.Broker
	Resolver   *command.Resolver
	Dispatcher *dispatch.Dispatcher
	Voice      *voice.Controller

	manager *browser.Manager
	watcher *config.Watcher
}

// newApp opens url in the browser and builds the full pipeline around it.
func newApp(ctx context.Context, cfg *config.Config, workspace, url string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prefs, err := store.Open(storePath(cfg, workspace))
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	if cfg.Language.Default != "" {
		if err := prefs.SetUserLanguage(cfg.Language.Default); err != nil {
			return nil, err
		}
	}

	runtime, err := capability.NewRuntime(ctx, cfg.Model.APIKey, cfg.Model.Name, cfg.Model.SummarizerName)
	if err != nil {
		prefs.Close()
		return nil, err
	}

	manager := browser.NewManager(cfg.Browser)
	pg, err := manager.Open(ctx, url)
	if err != nil {
		prefs.Close()
		return nil, err
	}

	rodPage := page.NewRodPage(pg)
	rodPage.SetMinSegmentLength(cfg.Reading.MinSegmentLength)
	synth := speech.NewRodSynthesizer(pg)
	recognizer := speech.NewRodRecognizer(pg)
	notifier := notify.Notifier(notify.NewOverlayNotifier(pg))
	if cfg.Browser.Headless {
		notifier = notify.NewLogNotifier()
	}

	b := broker.New()

	classifier := command.NewClassifier(runtime.LanguageModel(), cfg.ReadyTimeout(), cfg.PollInterval())
	translators := capability.NewTranslatorCache(runtime.TranslatorFactory(), cfg.ReadyTimeout(), cfg.PollInterval())
	background := broker.NewBackground(broker.BackgroundOptions{
		Model:        runtime.LanguageModel(),
		Detector:     runtime.LanguageDetector(),
		Summarizer:   runtime.Summarizer(),
		Translators:  translators,
		Classifier:   classifier,
		PageText:     rodPage.BodyText,
		ReadyTimeout: cfg.ReadyTimeout(),
		PollInterval: cfg.PollInterval(),
		AskLimit:     cfg.Reading.AskInputLimit,
	})
	background.Register(b)

	session := reading.NewSession(rodPage, rodPage, synth, prefs.UserLanguage)

	// Unmatched utterances cross the broker so classification runs where
	// the model session lives.
	resolver := command.NewResolver(&brokerClassifier{broker: b})

	// The voice handler closes over the dispatcher; it is assigned before
	// voice capture can be enabled.
	var dispatcher *dispatch.Dispatcher
	voiceCtl := voice.NewController(recognizer, prefs.UserLanguage, func(ctx context.Context, transcript string) {
		for _, resolved := range resolver.Resolve(ctx, transcript, prefs.UserLanguage()) {
			dispatcher.Dispatch(ctx, resolved)
		}
	})
	dispatcher = dispatch.New(dispatch.Options{
		Session:        session,
		Broker:         b,
		Synth:          synth,
		Notifier:       notifier,
		Page:           rodPage,
		Prefs:          prefs,
		Voice:          voiceCtl,
		TranslateLimit: cfg.Reading.TranslateInputLimit,
	})
	dispatcher.Register(b)

	logging.Boot("pipeline ready for %s", url)
	return &App{
		Store:      prefs,
		Broker:     b,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Voice:      voiceCtl,
		manager:    manager,
	}, nil
}

// newHeadlessApp builds only the background side, for probes that need no
// page.
func newHeadlessApp(ctx context.Context, cfg *config.Config) (*App, error) {
	runtime, err := capability.NewRuntime(ctx, cfg.Model.APIKey, cfg.Model.Name, cfg.Model.SummarizerName)
	if err != nil {
		return nil, err
	}

	b := broker.New()
	background := broker.NewBackground(broker.BackgroundOptions{
		Model:        runtime.LanguageModel(),
		Detector:     runtime.LanguageDetector(),
		Summarizer:   runtime.Summarizer(),
		Translators:  capability.NewTranslatorCache(runtime.TranslatorFactory(), cfg.ReadyTimeout(), cfg.PollInterval()),
		Classifier:   command.NewClassifier(runtime.LanguageModel(), cfg.ReadyTimeout(), cfg.PollInterval()),
		ReadyTimeout: cfg.ReadyTimeout(),
		PollInterval: cfg.PollInterval(),
	})
	background.Register(b)

	return &App{Broker: b}, nil
}

// WatchConfig reloads preferences when the config file changes on disk.
func (a *App) WatchConfig(ctx context.Context, path string) error {
	watcher, err := config.NewWatcher(path, func(updated *config.Config) {
		if updated.Language.Default != "" {
			if err := a.Store.SetUserLanguage(updated.Language.Default); err != nil {
				logger.Warn("Applying reloaded language failed", zap.Error(err))
				return
			}
			logging.Boot("user language updated to %s from config reload", updated.Language.Default)
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	a.watcher = watcher
	return nil
}

// Close releases the app's resources in reverse dependency order.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.Voice != nil {
		a.Voice.Disable()
	}
	if a.Broker != nil {
		a.Broker.Close()
	}
	if a.manager != nil {
		_ = a.manager.Shutdown(context.Background())
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

// brokerClassifier routes classification through the broker, so the fallback
// path is one correlated round trip like every other AI operation.
type brokerClassifier struct {
	broker *broker.Broker
}

func (c *brokerClassifier) Classify(ctx context.Context, raw, lang string) (command.Command, error) {
	res := c.broker.Send(ctx, broker.KindClassifyCommand, broker.Payload{Text: raw, Language: lang})
	if !res.Success {
		return command.Command{}, errors.New(failureMessage(res))
	}
	if len(res.Commands) == 0 {
		return command.Unknown(raw), nil
	}
	return res.Commands[0], nil
}

func failureMessage(res broker.Result) string {
	if res.Error != "" {
		return res.Error
	}
	return string(res.Reason)
}

func storePath(cfg *config.Config, workspace string) string {
	if filepath.IsAbs(cfg.Store.DatabasePath) {
		return cfg.Store.DatabasePath
	}
	return filepath.Join(workspace, cfg.Store.DatabasePath)
}
