// Package storage persists the widget state as independent named blobs.
//
// A Store only knows how to get and set raw bytes under a key. The codecs
// in this package (LoadSettings, SaveTasks, ...) turn those blobs into
// domain values and recover from missing or corrupt data.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"pomodoro/internal/fsutil"
)

// Store is a key/value blob store. Get reports absence with ok == false
// rather than an error.
type Store interface {
	Get(key string) (data []byte, ok bool, err error)
	Set(key string, data []byte) error
	Close() error
}

// Recoverer is implemented by stores that keep the previous version of each
// blob and can move a corrupt blob out of the way.
type Recoverer interface {
	Backup(key string) (data []byte, ok bool, err error)
	Quarantine(key string) (movedTo string, err error)
}

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// FileStore keeps each blob in <dataDir>/<key>.json. Writes are atomic and
// the previous version is kept as <key>.json.bak.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
	now     func() time.Time // injectable clock for deterministic tests
}

var (
	_ Store     = (*FileStore)(nil)
	_ Recoverer = (*FileStore)(nil)
)

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir, now: time.Now}, nil
}

// SetNowFunc overrides the clock used to name quarantined files. Passing nil
// resets it to time.Now.
func (s *FileStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// DataDir returns the directory holding the blob files.
func (s *FileStore) DataDir() string {
	return s.dataDir
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return readIfExists(s.Path(key))
}

func (s *FileStore) Set(key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := fsutil.WriteFileAtomic(path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Backup returns the previous version of key, if one was kept.
func (s *FileStore) Backup(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return readIfExists(s.Path(key) + ".bak")
}

// Quarantine renames the file for key to <file>.corrupt.<timestamp> so a
// broken blob is preserved for inspection.
func (s *FileStore) Quarantine(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	moved := fmt.Sprintf("%s.corrupt.%s", path, s.now().Format("20060102-150405"))
	if err := os.Rename(path, moved); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", key, err)
	}
	return moved, nil
}

// Keys lists the blobs currently on disk.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !keyPattern.MatchString(name) {
			continue
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error { return nil }

func readIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, true, nil
}

func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}
