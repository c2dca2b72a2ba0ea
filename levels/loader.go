/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package levels loads playable level definitions from YAML files on disk
// and resolves them for the engine.
package levels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Seednode/puzzlebox/game"
)

// Loader reads every *.yml and *.yaml file in a directory, one level per
// file. It implements game.LevelResolver.
type Loader struct {
	mu        sync.RWMutex
	levels    map[string]*game.LevelConfig
	defaultID string

	dir     string
	watched []*viper.Viper
	log     zerolog.Logger
}

func NewLoader(dir, defaultID string, log zerolog.Logger) *Loader {
	return &Loader{
		levels:    make(map[string]*game.LevelConfig),
		defaultID: defaultID,
		dir:       dir,
		log:       log,
	}
}

// Load parses every level file in the directory. A file that fails to parse
// aborts the load; a directory with no level files is an error, since the
// server cannot start a game without at least one level.
func (l *Loader) Load() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("reading level directory %q: %w", l.dir, err)
	}

	loaded := make(map[string]*game.LevelConfig)
	var watched []*viper.Viper

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		v := viper.New()
		v.SetConfigFile(path)

		level, err := parseLevel(v)
		if err != nil {
			return fmt.Errorf("level file %q: %w", path, err)
		}

		if _, dup := loaded[level.ID]; dup {
			return fmt.Errorf("level file %q: duplicate level id %q", path, level.ID)
		}

		loaded[level.ID] = level
		watched = append(watched, v)

		l.log.Info().
			Str("level", level.ID).
			Str("file", entry.Name()).
			Int("puzzles", len(level.Puzzles)).
			Msg("loaded level")
	}

	if len(loaded) == 0 {
		return fmt.Errorf("no level files found in %q", l.dir)
	}

	l.mu.Lock()
	l.levels = loaded
	l.watched = watched
	l.mu.Unlock()

	return nil
}

func parseLevel(v *viper.Viper) (*game.LevelConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var level game.LevelConfig
	if err := v.Unmarshal(&level); err != nil {
		return nil, err
	}

	if level.ID == "" {
		return nil, fmt.Errorf("missing level id")
	}
	if len(level.Puzzles) == 0 {
		return nil, fmt.Errorf("level %q has no puzzles", level.ID)
	}
	if level.MinPlayers <= 0 {
		level.MinPlayers = 2
	}

	return &level, nil
}

// Watch re-parses a level file whenever it changes on disk. Rooms already
// playing keep the config they started with; only new games see the update.
func (l *Loader) Watch() {
	l.mu.RLock()
	watched := l.watched
	l.mu.RUnlock()

	for _, v := range watched {
		v := v
		v.OnConfigChange(func(_ fsnotify.Event) {
			level, err := parseLevel(v)
			if err != nil {
				l.log.Error().Err(err).Str("file", v.ConfigFileUsed()).Msg("level reload failed, keeping previous version")
				return
			}

			l.mu.Lock()
			l.levels[level.ID] = level
			l.mu.Unlock()

			l.log.Info().Str("level", level.ID).Msg("level reloaded")
		})
		v.WatchConfig()
	}
}

// Validate checks every loaded level against the handler registry.
func (l *Loader) Validate(reg *game.Registry) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, level := range l.levels {
		if err := reg.Validate(level); err != nil {
			return err
		}
	}
	return nil
}

// GetLevel resolves a level by id.
func (l *Loader) GetLevel(id string) (*game.LevelConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	level, ok := l.levels[id]
	return level, ok
}

// DefaultLevel returns the configured default, falling back to the first
// level id in sorted order when none is configured.
func (l *Loader) DefaultLevel() (*game.LevelConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.defaultID != "" {
		level, ok := l.levels[l.defaultID]
		return level, ok
	}

	ids := l.idsLocked()
	if len(ids) == 0 {
		return nil, false
	}
	return l.levels[ids[0]], true
}

// IDs returns the loaded level ids, sorted.
func (l *Loader) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.idsLocked()
}

func (l *Loader) idsLocked() []string {
	ids := make([]string, 0, len(l.levels))
	for id := range l.levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
