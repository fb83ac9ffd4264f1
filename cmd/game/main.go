package main

import (
	"flag"
	"os"

	"github.com/Garsondee/Pathfinders/internal/config"
	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/Garsondee/Pathfinders/internal/logging"
	"github.com/Garsondee/Pathfinders/internal/scenario"
	"github.com/Garsondee/Pathfinders/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func main() {
	var cfgPath, scenarioPath string
	var watch bool
	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML (overrides scenario.path)")
	flag.BoolVar(&watch, "watch", false, "reload the scenario when its file changes")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("load config")
	}
	log, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		File:   cfg.Log.File,
	})
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("open log")
	}
	defer closer.Close()

	if scenarioPath != "" {
		cfg.Scenario.Path = scenarioPath
	}
	if watch {
		cfg.Scenario.Watch = true
	}
	gcfg, err := cfg.GameConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("game config")
	}

	// A rebuild reads the scenario file again so that edits take effect.
	seed := cfg.Sim.Seed
	build := func() (*game.World, error) {
		sc := scenario.Default()
		if cfg.Scenario.Path != "" {
			loaded, err := scenario.Load(cfg.Scenario.Path)
			if err != nil {
				return nil, err
			}
			sc = loaded
		}
		return scenario.Build(sc, gcfg, game.NewRand(seed), log)
	}

	opts := viewer.Options{
		Build: build,
		Dt:    cfg.TickDt(),
		Log:   log,
	}
	if cfg.Scenario.Watch && cfg.Scenario.Path != "" {
		w, err := scenario.Watch(cfg.Scenario.Path, scenario.DefaultDebounce)
		if err != nil {
			log.Fatal().Err(err).Msg("watch scenario")
		}
		defer w.Close()
		go func() {
			for err := range w.Errors {
				log.Warn().Err(err).Msg("scenario watcher")
			}
		}()
		opts.Reloads = w.Events
		log.Info().Str("path", cfg.Scenario.Path).Msg("watching scenario")
	}

	v, err := viewer.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("build world")
	}
	ebiten.SetWindowTitle("Pathfinders")
	ebiten.SetWindowSize(v.WindowSize())
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}
