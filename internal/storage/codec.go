package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
)

// ErrRecovered marks a load that returned a usable value after repairing or
// discarding bad data. The value returned alongside it is safe to use.
var ErrRecovered = errors.New("recovered")

// LoadSettings reads the settings blob. Missing fields take their defaults
// and invalid fields are reset to defaults.
func LoadSettings(s Store) (timer.Settings, error) {
	out, err := load(s, KeySettings, timer.DefaultSettings())
	return out.Sanitized(), err
}

// SaveSettings writes the settings blob.
func SaveSettings(s Store, settings timer.Settings) error {
	return save(s, KeySettings, settings)
}

// LoadTasks reads the task sequence. Duplicate ids, dangling parents and
// cycles are repaired and reported through ErrRecovered.
func LoadTasks(s Store) ([]tasktree.Task, error) {
	tasks, err := load[[]tasktree.Task](s, KeyTasks, nil)
	clean, fixes := tasktree.Normalize(tasks)
	if fixes > 0 && err == nil {
		err = fmt.Errorf("%w: %s: repaired %d entries", ErrRecovered, KeyTasks, fixes)
	}
	return clean, err
}

// SaveTasks writes the task sequence in order.
func SaveTasks(s Store, tasks []tasktree.Task) error {
	if tasks == nil {
		tasks = []tasktree.Task{}
	}
	return save(s, KeyTasks, tasks)
}

// LoadActiveTaskID reads the active task id; "" means none.
func LoadActiveTaskID(s Store) (string, error) {
	id, err := load[*string](s, KeyActiveTaskID, nil)
	if id == nil {
		return "", err
	}
	return *id, err
}

// SaveActiveTaskID writes the active task id. An empty id is stored as null.
func SaveActiveTaskID(s Store, id string) error {
	var v *string
	if id != "" {
		v = &id
	}
	return save(s, KeyActiveTaskID, v)
}

func save(s Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}
	return s.Set(key, data)
}

// load decodes key on top of def. Missing blobs yield def without error.
// Corrupt blobs fall back to the store's backup when it has one, otherwise
// to def; either way the error wraps ErrRecovered.
func load[T any](s Store, key string, def T) (T, error) {
	data, ok, err := s.Get(key)
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}

	out, cause := decode(key, data, def)
	if cause == nil {
		return out, nil
	}
	return recoverBlob(s, key, def, cause)
}

func decode[T any](key string, data []byte, def T) (T, error) {
	if isBlank(data) {
		return def, fmt.Errorf("%s is empty", key)
	}
	out := def
	if err := json.Unmarshal(data, &out); err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func recoverBlob[T any](s Store, key string, def T, cause error) (T, error) {
	r, ok := s.(Recoverer)
	if !ok {
		return def, fmt.Errorf("%w: %v (reset to defaults)", ErrRecovered, cause)
	}

	if bak, found, err := r.Backup(key); err == nil && found {
		if out, err := decode(key, bak, def); err == nil {
			_, _ = r.Quarantine(key)
			_ = s.Set(key, bak)
			return out, fmt.Errorf("%w: %v (restored from backup)", ErrRecovered, cause)
		}
	}

	moved, err := r.Quarantine(key)
	if err != nil {
		return def, fmt.Errorf("%w: %v (reset to defaults)", ErrRecovered, cause)
	}
	return def, fmt.Errorf("%w: %v (reset to defaults; original moved to %s)", ErrRecovered, cause, moved)
}
