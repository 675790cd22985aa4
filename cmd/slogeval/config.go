package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"gopkg.in/yaml.v3"

	slogeval "github.com/Debodeep94/SLOG-Eval"
	"github.com/Debodeep94/SLOG-Eval/source"
	"github.com/Debodeep94/SLOG-Eval/store/filestore"
	"github.com/Debodeep94/SLOG-Eval/store/kvstore"
	"github.com/Debodeep94/SLOG-Eval/store/memory"
	"github.com/Debodeep94/SLOG-Eval/store/sqlstore"
)

// Store backends selectable in the config file.
const (
	backendMemory = "memory"
	backendFile   = "file"
	backendSQLite = "sqlite"
	backendNATS   = "nats"
)

// storeConfig selects and configures the progress store.
type storeConfig struct {
	// Backend is one of memory, file, sqlite, nats.
	Backend string `yaml:"backend"`

	// Dir is the root directory of the file backend.
	Dir string `yaml:"dir"`

	// Path is the database file of the sqlite backend.
	Path string `yaml:"path"`

	// URL is the NATS server URL of the nats backend.
	URL string `yaml:"natsUrl"`

	// Bucket is the KV bucket of the nats backend.
	Bucket string `yaml:"bucket"`
}

// fileConfig is the on-disk YAML layout.
type fileConfig struct {
	Coordinator slogeval.Config  `yaml:"coordinator"`
	Store       storeConfig      `yaml:"store"`
	Items       []source.CSVFile `yaml:"items"`
}

func loadConfig(path string) (fileConfig, error) {
	cfg := fileConfig{
		Coordinator: slogeval.DefaultConfig(),
		Store:       storeConfig{Backend: backendFile, Dir: "progress"},
	}
	if path == "" {
		return cfg, errors.New("--config is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Items) == 0 {
		return cfg, fmt.Errorf("config %s: no item files", path)
	}

	return cfg, nil
}

// openStore builds the configured store. The returned closer is never nil.
func openStore(ctx context.Context, sc storeConfig, logger slogeval.Logger) (slogeval.ProgressStore, func() error, error) {
	nop := func() error { return nil }

	switch sc.Backend {
	case backendMemory:
		return memory.New(), nop, nil

	case backendFile, "":
		s, err := filestore.New(sc.Dir, filestore.WithLogger(logger))
		return s, nop, err

	case backendSQLite:
		s, err := sqlstore.Open(ctx, sc.Path, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, nop, err
		}

		return s, s.Close, nil

	case backendNATS:
		url := sc.URL
		if url == "" {
			url = nats.DefaultURL
		}
		nc, err := nats.Connect(url, nats.Timeout(5*time.Second))
		if err != nil {
			return nil, nop, fmt.Errorf("%w: connect %s: %w", slogeval.ErrStoreUnavailable, url, err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nop, fmt.Errorf("jetstream: %w", err)
		}
		s, err := kvstore.Open(ctx, js, sc.Bucket, kvstore.WithLogger(logger))
		if err != nil {
			nc.Close()
			return nil, nop, err
		}

		return s, func() error { nc.Close(); return nil }, nil

	default:
		return nil, nop, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
