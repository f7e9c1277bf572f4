// Package backup snapshots the persisted blobs into timestamped directories
// and writes them back on restore. It works against any storage.Store, so a
// backup taken from the file backend can be restored into SQLite and back.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/fsutil"
	"pomodoro/internal/storage"
	"pomodoro/internal/tasktree"
)

const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
)

const nameLayout = "2006-01-02_150405"

// Manager creates and restores backups of one store.
type Manager struct {
	store      storage.Store
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest describes one backup directory.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Keys       []string       `json:"keys"`
	Stats      map[string]int `json:"stats"`
}

// Info summarises a backup.
type Info struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Stats     map[string]int
}

// NewManager keeps backups of store under <dataDir>/backups.
func NewManager(store storage.Store, dataDir, appVersion string) *Manager {
	return &Manager{
		store:      store,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// Dir returns the directory holding the backups.
func (m *Manager) Dir() string { return m.backupDir }

// Create copies every stored blob into a new backup and returns its name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Names have millisecond resolution; step past any backup taken within
	// the same millisecond.
	now := m.now()
	name, path := "", ""
	for {
		name = fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
		path = filepath.Join(m.backupDir, name)
		if err := os.Mkdir(path, 0700); err == nil {
			break
		} else if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create backup: %w", err)
		}
		now = now.Add(time.Millisecond)
	}

	var keys []string
	for _, key := range storage.Keys() {
		data, ok, err := m.store.Get(key)
		if err != nil {
			_ = os.RemoveAll(path)
			return "", fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(path, key+".json"), data, 0600); err != nil {
			_ = os.RemoveAll(path)
			return "", fmt.Errorf("failed to copy %s: %w", key, err)
		}
		keys = append(keys, key)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Keys:       keys,
		Stats:      m.stats(),
	}
	if err := writeJSON(filepath.Join(path, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return name, nil
}

func (m *Manager) stats() map[string]int {
	stats := make(map[string]int)
	tasks, err := storage.LoadTasks(m.store)
	if err != nil {
		return stats
	}
	stats["tasks"] = len(tasks)
	for _, t := range tasks {
		if t.Done {
			stats["done"]++
		}
	}
	return stats
}

// List returns every backup, newest first. Directories that are neither
// described by a manifest nor named like a backup are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns information about one backup.
func (m *Manager) Get(name string) (*Info, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*Info, error) {
	path := filepath.Join(m.backupDir, name)
	var manifest Manifest
	if err := readJSON(filepath.Join(path, ManifestFile), &manifest); err != nil {
		createdAt, perr := parseName(name)
		if perr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = make(map[string]int)
	}
	return &Info{
		Name:      name,
		Path:      path,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
	}, nil
}

// Restore writes the blobs of backup name back into the store. Every blob
// is checked before anything is written, and a safety backup of the current
// state is taken first; its name is returned.
func (m *Manager) Restore(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(path, ManifestFile), &manifest); err != nil {
		manifest.Keys = storage.Keys()
	}

	blobs := make(map[string][]byte)
	for _, key := range manifest.Keys {
		data, err := os.ReadFile(filepath.Join(path, key+".json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", key, err)
		}
		if err := validate(key, data); err != nil {
			return "", fmt.Errorf("backup %s: %w", name, err)
		}
		blobs[key] = data
	}

	safety, err := m.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create safety backup: %w", err)
	}
	for _, key := range manifest.Keys {
		data, ok := blobs[key]
		if !ok {
			continue
		}
		if err := m.store.Set(key, data); err != nil {
			return safety, fmt.Errorf("failed to restore %s (safety backup: %s): %w", key, safety, err)
		}
	}
	return safety, nil
}

// RestoreLatest restores the newest backup and returns its name along with
// the safety backup's.
func (m *Manager) RestoreLatest() (restored, safety string, err error) {
	backups, err := m.List()
	if err != nil {
		return "", "", err
	}
	if len(backups) == 0 {
		return "", "", fmt.Errorf("no backups available")
	}
	safety, err = m.Restore(backups[0].Name)
	return backups[0].Name, safety, err
}

// Delete removes a backup.
func (m *Manager) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(path)
}

// Prune keeps the keep newest backups and deletes the rest.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}
	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// validate checks that data decodes as the blob stored under key.
func validate(key string, data []byte) error {
	var err error
	switch key {
	case storage.KeyTasks:
		var tasks []tasktree.Task
		err = json.Unmarshal(data, &tasks)
	case storage.KeyActiveTaskID:
		var id *string
		err = json.Unmarshal(data, &id)
	default:
		var v map[string]any
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", key, err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// parseName accepts 2006-01-02_150405 and 2006-01-02_150405_000.
func parseName(name string) (time.Time, error) {
	if len(name) == len(nameLayout)+4 {
		base, err := time.ParseInLocation(nameLayout, name[:len(nameLayout)], time.Local)
		if err != nil {
			return time.Time{}, err
		}
		if name[len(nameLayout)] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup format")
		}
		ms, err := strconv.Atoi(name[len(nameLayout)+1:])
		if err != nil || ms < 0 || ms > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return base.Add(time.Duration(ms) * time.Millisecond), nil
	}
	return time.ParseInLocation(nameLayout, name, time.Local)
}
