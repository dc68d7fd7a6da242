package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// countToken must appear in a template for the rendered name to carry
// the member count. The interactive edit path enforces it; the
// declarative load path does not, so a hand-edited file can carry
// token-less entries. `censusctl check` reports those.
const countToken = "{count}"

// GuildWatchConfig is one watched guild and its name template.
type GuildWatchConfig struct {
	GuildID      string `yaml:"guild_id"`
	NameTemplate string `yaml:"name_template"`
}

type watchFile struct {
	Watched []GuildWatchConfig `yaml:"watched"`
}

// WatchListStore owns the watch list for the process lifetime. Reads
// return fresh snapshots under a read lock; mutation goes through Add
// and Remove only, which also rewrite the backing file. The store can
// additionally reload itself when the file changes on disk.
type WatchListStore struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries []GuildWatchConfig
}

// LoadWatchList reads the watch list file. A missing file yields an
// empty list, not an error, so a fresh deployment starts clean.
func LoadWatchList(path string, logger *slog.Logger) (*WatchListStore, error) {
	s := &WatchListStore{
		path:   path,
		logger: logger,
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WatchListStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.entries = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read watch list: %w", err)
	}

	var file watchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal watch list: %w", err)
	}

	s.mu.Lock()
	s.entries = file.Watched
	s.mu.Unlock()
	return nil
}

// Lookup resolves a guild to its template. On duplicate guild IDs the
// first entry wins.
func (s *WatchListStore) Lookup(guildID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.GuildID == guildID {
			return entry.NameTemplate, true
		}
	}
	return "", false
}

// Entries returns a copy of the current watch list.
func (s *WatchListStore) Entries() []GuildWatchConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GuildWatchConfig, len(s.entries))
	copy(out, s.entries)
	return out
}

// Add registers or replaces a watched guild and rewrites the file. The
// template must carry the count token.
func (s *WatchListStore) Add(guildID, nameTemplate string) error {
	if guildID == "" {
		return fmt.Errorf("guild ID cannot be empty")
	}
	if !strings.Contains(nameTemplate, countToken) {
		return fmt.Errorf("template must contain the %s token", countToken)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i, entry := range s.entries {
		if entry.GuildID == guildID {
			s.entries[i].NameTemplate = nameTemplate
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries = append(s.entries, GuildWatchConfig{GuildID: guildID, NameTemplate: nameTemplate})
	}
	return s.save()
}

// Remove drops a watched guild and rewrites the file. Removing an
// unknown guild is a no-op.
func (s *WatchListStore) Remove(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.GuildID != guildID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	return s.save()
}

// TokenlessEntries returns watched guilds whose template lacks the
// count token. These render to the template verbatim; the declarative
// load path accepts them, so surfacing them is a diagnostic concern.
func (s *WatchListStore) TokenlessEntries() []GuildWatchConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []GuildWatchConfig
	for _, entry := range s.entries {
		if !strings.Contains(entry.NameTemplate, countToken) {
			out = append(out, entry)
		}
	}
	return out
}

// save rewrites the backing file. Caller holds the write lock.
func (s *WatchListStore) save() error {
	data, err := yaml.Marshal(watchFile{Watched: s.entries})
	if err != nil {
		return fmt.Errorf("marshal watch list: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write watch list: %w", err)
	}
	return nil
}

// Watch reloads the store when the backing file changes on disk, until
// the context is canceled. Errors after startup are logged, not fatal:
// the store keeps serving its last good snapshot.
func (s *WatchListStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watch list watcher: %w", err)
	}
	// Watch the directory, not the file: editors and censusctl replace
	// the file, which would drop a direct file watch.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.reload(); err != nil {
					s.logger.Error("watch list reload failed", slog.Any("error", err))
					continue
				}
				s.logger.Info("watch list reloaded", slog.Int("entries", len(s.Entries())))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("watch list watcher error", slog.Any("error", err))
			}
		}
	}()
	return nil
}
