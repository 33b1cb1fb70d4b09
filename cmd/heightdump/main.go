package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/config"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/storage"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world"
	"github.com/OCharnyshevich/flightsim/internal/sandbox/world/gen"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		configSrc = flag.String("config", "", "config file path or remote source")
		name      = flag.String("o", "region", "export name inside <data-dir>/exports")
		minX      = flag.Int("min-x", -8, "first chunk x")
		maxX      = flag.Int("max-x", 8, "last chunk x")
		minZ      = flag.Int("min-z", -8, "first chunk z")
		maxZ      = flag.Int("max-z", 8, "last chunk z")
	)
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.Float64Var(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk edge length in world units")
	flag.IntVar(&cfg.Segments, "segments", cfg.Segments, "cells along one chunk edge")
	flag.Float64Var(&cfg.NoiseScale, "noise-scale", cfg.NoiseScale, "noise lattice spacing in world units")
	flag.Float64Var(&cfg.Amplitude, "amplitude", cfg.Amplitude, "terrain height amplitude")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *name == "" {
		log.Error("export name required")
		os.Exit(1)
	}
	if *minX > *maxX || *minZ > *maxZ {
		log.Error("empty region", "minX", *minX, "maxX", *maxX, "minZ", *minZ, "maxZ", *maxZ)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configSrc != "" {
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

		path, err := config.Fetch(ctx, *configSrc, cfg.DataDir)
		if err != nil {
			log.Error("fetch config", "error", err)
			os.Exit(1)
		}
		fromFile, err := config.Load(path)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		log.Error("open data directory", "error", err)
		os.Exit(1)
	}
	path := store.ExportPath(*name)
	db, err := storage.OpenHeightDB(path)
	if err != nil {
		log.Error("open export", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	log.Info("start exporting heightmaps", "path", path, "seed", cfg.Seed)

	builder := gen.NewBuilder(gen.NewField(cfg.Seed, cfg.NoiseScale, cfg.Amplitude))
	size := cfg.ChunkSize
	n := 0
	for cz := *minZ; cz <= *maxZ; cz++ {
		for cx := *minX; cx <= *maxX; cx++ {
			if ctx.Err() != nil {
				log.Info("export interrupted", "written", n)
				return
			}
			c := world.Coord{X: cx, Z: cz}
			ox, oz := c.Origin(size)
			hm, err := builder.Build(ox, oz, size, cfg.Segments)
			if err != nil {
				log.Error("build heightmap", "chunk", c.String(), "error", err)
				os.Exit(1)
			}
			key := storage.Key{Seed: cfg.Seed, Coord: c, Size: size, Segments: cfg.Segments}
			if err := db.Put(ctx, key, hm); err != nil {
				log.Error("store heightmap", "error", err)
				os.Exit(1)
			}
			n++
		}
	}

	total, err := db.Count(ctx, cfg.Seed)
	if err != nil {
		log.Error("count heightmaps", "error", err)
		os.Exit(1)
	}
	log.Info("done exporting heightmaps", "written", n, "total", total, "path", path)
}
