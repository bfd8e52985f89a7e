package memory

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store is the persistent user memory: a small string key/value record kept
// as a JSON document on disk. Loads never fail the caller (missing or corrupt
// storage degrades to an empty record) and saves are best-effort.
type Store struct {
	path    string
	mu      sync.Mutex
	record  map[string]string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads the record at path and starts watching the file so edits made
// outside the process are picked up. Watching is best-effort; the store works
// without it.
func Open(path string) *Store {
	s := &Store{
		path:   path,
		record: load(path),
		done:   make(chan struct{}),
	}
	s.startWatcher()
	return s
}

func load(path string) map[string]string {
	record := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [MEMORY] Failed to read %s: %v (starting empty)", path, err)
		}
		return record
	}

	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("⚠️  [MEMORY] Corrupt memory file %s: %v (starting empty)", path, err)
		return make(map[string]string)
	}
	return record
}

// Get returns the value for key. The second return is false when the key has
// never been set - a valid state handlers must interpret as "unset".
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.record[key]
	return value, ok
}

// Set stores key=value and flushes to disk synchronously. Persistence
// failures are logged and swallowed; the in-memory record is already updated.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record[key] = value
	s.save()
}

func (s *Store) save() {
	data, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		log.Printf("⚠️  [MEMORY] Failed to encode memory: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("⚠️  [MEMORY] Failed to save memory: %v", err)
	}
}

func (s *Store) startWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  [MEMORY] File watcher unavailable: %v", err)
		return
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  [MEMORY] Cannot watch %s: %v", dir, err)
		watcher.Close()
		return
	}

	s.watcher = watcher
	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name == s.path && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					s.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  [MEMORY] Watcher error: %v", err)
			}
		}
	}()
}

func (s *Store) reload() {
	record := load(s.path)
	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
	log.Printf("🔄 [MEMORY] Reloaded %s after external change", s.path)
}

// Close stops the file watcher
func (s *Store) Close() {
	close(s.done)
	if s.watcher != nil {
		s.watcher.Close()
	}
}
