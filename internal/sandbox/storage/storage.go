package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/config"
)

// Storage handles file-based persistence for config and terrain exports.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "exports"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// Dir returns the storage root.
func (s *Storage) Dir() string { return s.dir }

// ConfigPath returns where the config file lives.
func (s *Storage) ConfigPath() string { return filepath.Join(s.dir, config.FileName) }

// ExportPath returns the path of the named heightmap database.
func (s *Storage) ExportPath(name string) string {
	return filepath.Join(s.dir, "exports", name+".sqlite")
}

// LoadConfig reads the config file into cfg. If the file does not exist,
// cfg is unchanged and loaded is false.
func (s *Storage) LoadConfig(cfg *config.Config) (loaded bool, err error) {
	path := s.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config: %w", err)
	}
	parsed, err := config.Parse(data)
	if err != nil {
		return false, err
	}
	*cfg = *parsed
	s.log.Info("loaded config from file", "path", path)
	return true, nil
}

// SaveConfig writes cfg to the config file atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWrite(s.ConfigPath(), data)
}

// atomicWrite writes data using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
