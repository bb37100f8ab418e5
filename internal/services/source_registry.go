package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"trendscribe/internal/models"
)

// sourcesFile is the on-disk shape of the trend-source registry.
type sourcesFile struct {
	Sources []models.TrendSourceConfig `yaml:"sources"`
}

// SourceRegistry holds the trend-source configuration, loaded from a YAML
// file and hot-reloaded when the file changes.
type SourceRegistry struct {
	mu      sync.RWMutex
	path    string
	sources []models.TrendSourceConfig
	watcher *fsnotify.Watcher
}

// NewSourceRegistry loads the registry from path. A missing file is not an
// error: the registry starts empty and picks the file up once it appears.
func NewSourceRegistry(path string) *SourceRegistry {
	r := &SourceRegistry{path: path}
	if err := r.load(); err != nil {
		log.Printf("⚠️  [SOURCES] Could not load %s: %v (starting with no sources)", path, err)
	}
	return r
}

// Sources returns the currently enabled source configs.
func (r *SourceRegistry) Sources() []models.TrendSourceConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]models.TrendSourceConfig, 0, len(r.sources))
	for _, cfg := range r.sources {
		if cfg.Enabled {
			enabled = append(enabled, cfg)
		}
	}
	return enabled
}

// Watch starts a background reload on file changes. Call Close to stop.
func (r *SourceRegistry) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	r.watcher = watcher

	// Watch the directory: editors replace the file, which drops a watch
	// on the file itself.
	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.load(); err != nil {
					log.Printf("⚠️  [SOURCES] Reload failed: %v (keeping previous config)", err)
					continue
				}
				log.Printf("🔄 [SOURCES] Reloaded %s (%d sources)", r.path, len(r.sources))

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  [SOURCES] Watcher error: %v", err)
			}
		}
	}()

	log.Printf("👀 [SOURCES] Watching %s for changes", r.path)
	return nil
}

// Close stops the file watcher.
func (r *SourceRegistry) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *SourceRegistry) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}

	var parsed sourcesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	r.mu.Lock()
	r.sources = parsed.Sources
	r.mu.Unlock()
	return nil
}
