package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/flightsim/internal/sandbox"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/config"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/feed"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/storage"
)

func main() {
	cfg := config.DefaultConfig()

	configSrc := flag.String("config", "", "config file path or remote source (https://, git::, s3::)")
	save := flag.Bool("save-config", false, "write the effective config to the data directory")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.Float64Var(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk edge length in world units")
	flag.IntVar(&cfg.Segments, "segments", cfg.Segments, "cells along one chunk edge")
	flag.Float64Var(&cfg.ViewDistance, "view-distance", cfg.ViewDistance, "streaming distance in world units")
	flag.Float64Var(&cfg.NoiseScale, "noise-scale", cfg.NoiseScale, "noise lattice spacing in world units")
	flag.Float64Var(&cfg.Amplitude, "amplitude", cfg.Amplitude, "terrain height amplitude")
	flag.StringVar(&cfg.Neighborhood, "neighborhood", cfg.Neighborhood, "resident chunk shape: square or diamond")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "simulation ticks per second")
	flag.Float64Var(&cfg.Gravity, "gravity", cfg.Gravity, "vertical gravity")
	flag.IntVar(&cfg.HeapFloats, "heap-floats", cfg.HeapFloats, "physics heap capacity in floats (0 = unbounded)")
	flag.BoolVar(&cfg.Water, "water", cfg.Water, "add a water plane to every chunk")
	flag.Float64Var(&cfg.WaterLevel, "water-level", cfg.WaterLevel, "water plane height")
	flag.Float64Var(&cfg.FlightSpeed, "speed", cfg.FlightSpeed, "tracked route speed")
	flag.Float64Var(&cfg.FlightAltitude, "altitude", cfg.FlightAltitude, "tracked route altitude above ground")
	flag.StringVar(&cfg.FeedAddr, "feed", cfg.FeedAddr, "chunk event feed listen address (empty = disabled)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		log.Error("open data directory", "error", err)
		os.Exit(1)
	}

	fromFile := config.DefaultConfig()
	if *configSrc != "" {
		path, err := config.Fetch(ctx, *configSrc, cfg.DataDir)
		if err != nil {
			log.Error("fetch config", "error", err)
			os.Exit(1)
		}
		fromFile, err = config.Load(path)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		log.Info("loaded config", "source", *configSrc, "path", path)
		config.Merge(cfg, fromFile, explicit)
	} else if loaded, err := store.LoadConfig(fromFile); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	} else if loaded {
		config.Merge(cfg, fromFile, explicit)
	}

	if *save {
		if err := store.SaveConfig(cfg); err != nil {
			log.Error("save config", "error", err)
			os.Exit(1)
		}
		log.Info("saved config", "path", store.ConfigPath())
	}

	sim, err := sandbox.New(cfg, log)
	if err != nil {
		log.Error("create sim", "error", err)
		os.Exit(1)
	}

	if cfg.FeedAddr != "" {
		hub := feed.New(sim.Chunks().HeightAt, log)
		sim.Chunks().Observe(hub.Observe)
		go func() {
			if err := hub.Serve(ctx, cfg.FeedAddr); err != nil {
				log.Error("feed error", "error", err)
				cancel()
			}
		}()
	}

	if err := sim.Start(ctx); err != nil {
		log.Error("sim error", "error", err)
		os.Exit(1)
	}
}
