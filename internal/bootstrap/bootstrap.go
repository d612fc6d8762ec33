package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	libraryinadapter "soundblanket/internal/modules/library/adapter/in"
	libraryoutadapter "soundblanket/internal/modules/library/adapter/out"
	libraryservice "soundblanket/internal/modules/library/service"
	libraryusecase "soundblanket/internal/modules/library/usecase"
	lifecycleinadapter "soundblanket/internal/modules/lifecycle/adapter/in"
	lifecyclein "soundblanket/internal/modules/lifecycle/port/in"
	lifecycleusecase "soundblanket/internal/modules/lifecycle/usecase"
	mixerinadapter "soundblanket/internal/modules/mixer/adapter/in"
	mixeroutadapter "soundblanket/internal/modules/mixer/adapter/out"
	"soundblanket/internal/modules/mixer/domain"
	"soundblanket/internal/modules/mixer/dto"
	mixerout "soundblanket/internal/modules/mixer/port/out"
	mixerservice "soundblanket/internal/modules/mixer/service"
	mixerusecase "soundblanket/internal/modules/mixer/usecase"
	"soundblanket/internal/platform/clock"
	"soundblanket/internal/platform/config"
	"soundblanket/internal/platform/id"
	"soundblanket/internal/platform/logging"
	"soundblanket/internal/platform/runloop"
	uiapp "soundblanket/internal/ui/app"
)

// shutdownTimeout bounds the final auto-save and release after the caller's
// context is gone.
const shutdownTimeout = 5 * time.Second

type Options struct {
	// Audio opens the configured playback backend. Commands that only read
	// or edit stored mixes leave it off and never start a player.
	Audio bool
	// LogToFile sends log output to the configured log file instead of
	// stderr, which the terminal UI owns.
	LogToFile bool
}

type App struct {
	MixerCLI   mixerinadapter.CLIHandler
	MixerTUI   mixerinadapter.TUIHandler
	LibraryCLI libraryinadapter.CLIHandler
	Lifecycle  lifecyclein.Usecase

	log     hclog.Logger
	loop    *runloop.Loop
	closers []func() error
}

func New(cfg config.Config, opts Options) (*App, error) {
	logOpts := logging.Options{Level: cfg.LogLevel}
	if opts.LogToFile {
		logOpts.File = cfg.LogFile
	}
	baseLog, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	log := baseLog.With("run", id.UUID{}.New())
	app := &App{log: log, closers: []func() error{closeLog}}

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		app.Close()
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	store, err := newStore(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		app.closers = append(app.closers, c.Close)
	}

	factory, err := newBackendFactory(cfg, opts, log.Named("audio"))
	if err != nil {
		app.Close()
		return nil, err
	}

	libraryUC := libraryusecase.NewInteractor(libraryservice.NewSoundService(
		libraryoutadapter.NewDirSoundSource(cfg.SoundsDir),
		log.Named("library"),
	))

	app.loop = runloop.New(log.Named("loop"))
	mgr := mixerservice.NewMixManager(store, clock.SystemClock{}, log.Named("mixer"))
	sounds, err := libraryUC.ListSounds(context.Background())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("scan sounds: %w", err)
	}
	timing := mixerservice.Timing{RetryDelay: cfg.RetryDelay, ApplyDelay: cfg.ApplyDelay}
	channelLog := log.Named("channel")
	for _, s := range sounds {
		ch := mixerservice.NewChannel(domain.ChannelID(s.Name), s.Path, cfg.DefaultVolume, factory, app.loop, channelLog, timing)
		if err := mgr.RegisterChannel(ch); err != nil {
			app.Close()
			return nil, fmt.Errorf("register %s: %w", s.Name, err)
		}
	}
	log.Debug("channels registered", "count", len(sounds), "sounds_dir", cfg.SoundsDir)

	mixerUC := mixerusecase.NewInteractor(mgr, app.loop)
	app.MixerCLI = mixerinadapter.NewCLIHandler(mixerUC)
	app.MixerTUI = mixerinadapter.NewTUIHandler(mixerUC)
	app.LibraryCLI = libraryinadapter.NewCLIHandler(libraryUC)
	app.Lifecycle = lifecycleusecase.NewInteractor(mixerUC, log.Named("lifecycle"))
	return app, nil
}

func newStore(cfg config.Config) (mixerout.MixStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := mixeroutadapter.NewSQLiteMixStore(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open mix store: %w", err)
		}
		return store, nil
	default:
		return mixeroutadapter.NewJSONMixStore(cfg.StorePath), nil
	}
}

func newBackendFactory(cfg config.Config, opts Options, log hclog.Logger) (mixerout.BackendFactory, error) {
	if !opts.Audio {
		return mixeroutadapter.NewSystemBackendFactory(log), nil
	}
	variant, err := mixeroutadapter.ParseVariant(cfg.Backend)
	if err != nil {
		return nil, err
	}
	factory, chosen, err := mixeroutadapter.NewBackendFactory(variant, cfg.SampleRate, log)
	if err != nil {
		return nil, fmt.Errorf("open audio backend: %w", err)
	}
	log.Info("audio backend ready", "backend", string(chosen))
	return factory, nil
}

// Run serves the mixer loop while fn executes, then stops it. The loop keeps
// running after ctx is cancelled so fn can still shut down cleanly.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error { return a.loop.Run(loopCtx) })
	g.Go(func() error {
		defer stopLoop()
		return fn(ctx)
	})
	return g.Wait()
}

// RunHeadless plays without a UI: it restores the last session, optionally
// loads mixName on top, and serves lifecycle signals until terminated.
func (a *App) RunHeadless(ctx context.Context, mixName string) error {
	return a.Run(ctx, func(ctx context.Context) error {
		a.Lifecycle.Start(ctx)
		if mixName != "" {
			if _, err := a.MixerCLI.LoadMix(ctx, mixName); err != nil {
				a.terminate(ctx)
				return fmt.Errorf("load mix %s: %w", mixName, err)
			}
		}
		if channels, err := a.MixerCLI.ListChannels(ctx); err == nil {
			a.log.Info("headless player running", "channels", len(channels))
		}
		err := lifecycleinadapter.NewSignalHandler(a.Lifecycle, a.log.Named("signals")).Run(ctx)
		if errors.Is(err, lifecycleinadapter.ErrTerminated) {
			return nil
		}
		a.terminate(ctx)
		return err
	})
}

// RunTUI starts the terminal UI on top of a started lifecycle.
func (a *App) RunTUI(ctx context.Context) error {
	return a.Run(ctx, func(ctx context.Context) error {
		a.Lifecycle.Start(ctx)
		defer a.terminate(ctx)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		program := tea.NewProgram(uiapp.NewModel(a.MixerTUI, a.Lifecycle), tea.WithAltScreen(), tea.WithContext(ctx))
		updates := make(chan dto.ChannelOutput, 64)
		unsubscribe, err := a.MixerTUI.Subscribe(ctx, func(c dto.ChannelOutput) {
			select {
			case updates <- c:
			default:
				a.log.Debug("channel update dropped", "channel", c.ID)
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		defer unsubscribe()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			_, err := program.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		})
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case c := <-updates:
					program.Send(uiapp.ChannelUpdate(c))
				}
			}
		})
		g.Go(func() error {
			err := lifecycleinadapter.NewTerminateHandler(a.Lifecycle, a.log.Named("signals")).Run(gctx)
			if errors.Is(err, lifecycleinadapter.ErrTerminated) {
				program.Quit()
				return nil
			}
			return err
		})
		return g.Wait()
	})
}

// terminate releases every channel even when ctx was already cancelled.
func (a *App) terminate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	a.Lifecycle.Terminate(ctx)
}

// Close releases stores and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
