// Command demo runs a small game-state machine on the realtime runtime and
// serves its metrics and transition graph over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/statematch"
	"github.com/comalice/statematch/internal/config"
	"github.com/comalice/statematch/internal/log"
	"github.com/comalice/statematch/internal/production"
	"github.com/comalice/statematch/realtime"
)

type Mode uint8

const (
	Menu Mode = iota
	Playing
)

func (m Mode) String() string {
	if m == Playing {
		return "Playing"
	}
	return "Menu"
}

type GameState struct {
	Mode   Mode
	Paused bool
}

func (s GameState) String() string {
	if s.Mode == Playing && s.Paused {
		return "Playing(paused)"
	}
	return s.Mode.String()
}

func togglePause(s GameState) GameState {
	if s.Mode == Playing {
		s.Paused = !s.Paused
	}
	return s
}

// script is the sequence of requests the demo replays, one per step.
var script = []realtime.Command{
	func(w *statematch.World) { statematch.SetNext(w, GameState{Mode: Playing}) },
	func(w *statematch.World) { statematch.SetNextWith(w, togglePause) },
	func(w *statematch.World) { statematch.SetNextWith(w, togglePause) },
	// Already playing: consumed without running any phase.
	func(w *statematch.World) { statematch.SetNext(w, GameState{Mode: Playing}) },
	func(w *statematch.World) { statematch.SetNext(w, GameState{Mode: Menu}) },
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	step := flag.Duration("step", time.Second, "delay between scripted requests")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Service: "statematch-demo"})
	logger := log.WithComponent("demo")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *step, logger); err != nil {
		logger.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, step time.Duration, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := production.NewMetrics(reg)
	graph := production.NewGraph()
	observers := []statematch.Observer{metrics, graph}

	if cfg.TracePath != "" {
		f, err := os.OpenFile(cfg.TracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		trace := production.NewTraceWriter(f)
		defer func() {
			if err := trace.Close(); err != nil {
				logger.Warn().Err(err).Msg("trace incomplete")
			}
		}()
		observers = append(observers, trace)
	}

	app := statematch.New(statematch.WithObserver(statematch.Observers(observers...)))
	registerGame(app, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt := realtime.NewRuntime(app, realtime.Config{
		TickRate:           cfg.TickRate,
		MaxCommandsPerTick: cfg.MaxCommandsPerTick,
		OnTick: func(tick uint64, d time.Duration) {
			metrics.ObserveTick(tick, d)
			if cfg.Frames > 0 && tick >= cfg.Frames {
				cancel()
			}
		},
	})
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer rt.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return replay(ctx, rt, step, logger)
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newRouter(rt, graph, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("debug server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	logger.Info().Uint64(log.FieldTick, rt.Tick()).Msg("demo finished")
	fmt.Print(graph.ExportDOT())
	return err
}

func registerGame(app *statematch.App, logger zerolog.Logger) {
	isPlaying := statematch.Func(func(s GameState) bool { return s.Mode == Playing })

	statematch.RegisterState[GameState](app).
		OnEnter(GameState{Mode: Menu}, func(context.Context, *statematch.World) error {
			logger.Info().Msg("welcome to the menu")
			return nil
		}).
		OnTransition(GameState{Mode: Menu}, GameState{Mode: Playing}, func(context.Context, *statematch.World) error {
			logger.Info().Msg("loading level")
			return nil
		}).
		OnEnter(GameState{Mode: Playing, Paused: true}, func(context.Context, *statematch.World) error {
			logger.Info().Msg("game paused")
			return nil
		})

	app.OnEntering(statematch.RunIf(func(ctx context.Context, _ *statematch.World) error {
		at, _ := statematch.ActiveFrom[GameState](ctx)
		s, _ := at.Main()
		logger.Info().Stringer(log.FieldState, s).Msg("game started")
		return nil
	}, statematch.EnteringState(isPlaying)))

	app.OnExiting(statematch.RunIf(func(context.Context, *statematch.World) error {
		logger.Info().Msg("game over")
		return nil
	}, statematch.ExitingState(isPlaying)))

	app.AddSystem(func(context.Context, *statematch.World) error {
		logger.Trace().Msg("simulating")
		return nil
	}, statematch.InState(statematch.Eq(GameState{Mode: Playing})))
}

// replay submits the script, one request per step, looping until ctx ends.
func replay(ctx context.Context, rt *realtime.Runtime, step time.Duration, logger zerolog.Logger) error {
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := rt.Submit(script[i%len(script)]); err != nil {
				if errors.Is(err, realtime.ErrStopped) {
					return nil
				}
				logger.Warn().Err(err).Msg("request dropped")
			}
		}
	}
}

func newRouter(rt *realtime.Runtime, graph *production.Graph, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/debug", func(r chi.Router) {
		r.Get("/graph.dot", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/vnd.graphviz")
			_, _ = fmt.Fprint(w, graph.ExportDOT())
		})
		r.Get("/graph.json", func(w http.ResponseWriter, _ *http.Request) {
			data, err := graph.ExportJSON()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		})
		r.Get("/states", func(w http.ResponseWriter, _ *http.Request) {
			var states []statematch.StateInfo
			rt.View(func(world *statematch.World) {
				states = world.States()
			})
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(states)
		})
	})

	return r
}
