package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"pomodoro/internal/tasktree"
	"pomodoro/internal/timer"
)

// createTestStore creates a FileStore in a temporary directory.
func createTestStore(t testing.TB) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	store.SetNowFunc(func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) })
	return store
}

func strPtr(s string) *string { return &s }

// =============================================================================
// FileStore
// =============================================================================

func TestFileStore_GetMissing(t *testing.T) {
	store := createTestStore(t)

	data, ok, err := store.Get(KeyTasks)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || data != nil {
		t.Fatalf("Get() = %q, %v; want nil, false", data, ok)
	}
}

func TestFileStore_SetKeepsBackup(t *testing.T) {
	store := createTestStore(t)

	if err := store.Set("settings", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set("settings", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, _, _ := store.Get("settings")
	if string(data) != `{"v":2}` {
		t.Errorf("Get() = %s, want v2", data)
	}
	bak, ok, err := store.Backup("settings")
	if err != nil || !ok {
		t.Fatalf("Backup() = %v, %v", ok, err)
	}
	if string(bak) != `{"v":1}` {
		t.Errorf("Backup() = %s, want v1", bak)
	}
}

func TestFileStore_RejectsBadKeys(t *testing.T) {
	store := createTestStore(t)
	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		if err := store.Set(key, []byte("{}")); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
		if _, _, err := store.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
}

func TestFileStore_Keys(t *testing.T) {
	store := createTestStore(t)
	for _, k := range []string{KeyTasks, KeySettings} {
		if err := store.Set(k, []byte("{}")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if want := []string{KeySettings, KeyTasks}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestFileStore_PermissionsArePrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions are not meaningful on Windows")
	}

	store := createTestStore(t)
	if err := SaveTasks(store, nil); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}
	info, err := os.Stat(store.Path(KeyTasks))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("permissions = %o, want no group/other bits", info.Mode().Perm())
	}
}

// =============================================================================
// Codecs
// =============================================================================

func TestTasks_RoundTrip(t *testing.T) {
	store := createTestStore(t)

	tasks := []tasktree.Task{
		{ID: "task-3-1700000000003", Text: "child", ParentID: strPtr("task-1-1700000000001")},
		{ID: "task-1-1700000000001", Text: "Write report", Done: true},
		{ID: "task-2-1700000000002", Text: "Unicode ✓ \"quoted\""},
		{ID: "task-4-1700000000004", Text: "grandchild", ParentID: strPtr("task-3-1700000000003")},
	}
	if err := SaveTasks(store, tasks); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}

	loaded, err := LoadTasks(store)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, tasks) {
		t.Errorf("LoadTasks() = %+v, want %+v", loaded, tasks)
	}
}

func TestTasks_BlobLayout(t *testing.T) {
	store := createTestStore(t)
	tasks := []tasktree.Task{
		{ID: "a", Text: "top"},
		{ID: "b", Text: "sub", ParentID: strPtr("a")},
	}
	if err := SaveTasks(store, tasks); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}

	data, _, _ := store.Get(KeyTasks)
	raw := strings.Join(strings.Fields(string(data)), "")
	want := `[{"id":"a","text":"top","done":false,"parentId":null},{"id":"b","text":"sub","done":false,"parentId":"a"}]`
	if raw != want {
		t.Errorf("blob = %s\nwant %s", raw, want)
	}
}

func TestLoadTasks_EmptyStore(t *testing.T) {
	store := createTestStore(t)
	tasks, err := LoadTasks(store)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

func TestLoadTasks_RepairsDanglingParents(t *testing.T) {
	store := createTestStore(t)
	blob := `[{"id":"a","text":"x","done":false,"parentId":"ghost"},{"id":"a","text":"dup","done":false,"parentId":null}]`
	if err := store.Set(KeyTasks, []byte(blob)); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadTasks(store)
	if !errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadTasks() error = %v, want ErrRecovered", err)
	}
	if len(tasks) != 1 || tasks[0].ParentID != nil || tasks[0].Text != "x" {
		t.Errorf("LoadTasks() = %+v", tasks)
	}
}

func TestLoadTasks_CorruptRecoversFromBackup(t *testing.T) {
	store := createTestStore(t)
	good := []tasktree.Task{{ID: "a", Text: "keep me"}}
	if err := SaveTasks(store, good); err != nil {
		t.Fatal(err)
	}
	// Second write moves the good blob into .bak.
	if err := store.Set(KeyTasks, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadTasks(store)
	if !errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadTasks() error = %v, want ErrRecovered", err)
	}
	if !reflect.DeepEqual(tasks, good) {
		t.Errorf("LoadTasks() = %+v, want %+v", tasks, good)
	}

	matches, _ := filepath.Glob(store.Path(KeyTasks) + ".corrupt.*")
	if len(matches) != 1 {
		t.Errorf("expected one quarantined file, got %v", matches)
	}

	// The restored blob is written back, so the next load is clean.
	if _, err := LoadTasks(store); err != nil {
		t.Errorf("second LoadTasks() error = %v", err)
	}
}

func TestLoadTasks_CorruptWithoutBackupResets(t *testing.T) {
	store := createTestStore(t)
	if err := os.WriteFile(store.Path(KeyTasks), []byte("   "), 0o600); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadTasks(store)
	if !errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadTasks() error = %v, want ErrRecovered", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
	if !strings.Contains(err.Error(), ".corrupt.20260301-093000") {
		t.Errorf("error should name the quarantined file: %v", err)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	store := createTestStore(t)
	want := timer.Settings{
		WorkDuration:            50 * 60,
		BreakDuration:           10 * 60,
		LongBreakDuration:       30 * 60,
		SessionsBeforeLongBreak: 2,
		NotificationSound:       timer.SoundRing,
		Volume:                  0.3,
	}
	if err := SaveSettings(store, want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	got, err := LoadSettings(store)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got != want {
		t.Errorf("LoadSettings() = %+v, want %+v", got, want)
	}

	data, _, _ := store.Get(KeySettings)
	for _, field := range []string{"workDuration", "breakDuration", "longBreakDuration", "sessionsBeforeLongBreak", "notificationSound", "volume"} {
		if !strings.Contains(string(data), `"`+field+`"`) {
			t.Errorf("settings blob missing %s: %s", field, data)
		}
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want func(*timer.Settings)
	}{
		{
			name: "missing fields take defaults",
			blob: `{"workDuration": 3000}`,
			want: func(s *timer.Settings) { s.WorkDuration = 3000 },
		},
		{
			name: "invalid fields revert",
			blob: `{"workDuration": -5, "notificationSound": "gong", "volume": 4, "breakDuration": 120}`,
			want: func(s *timer.Settings) { s.BreakDuration = 120 },
		},
		{
			name: "unknown fields ignored",
			blob: `{"theme": "dark"}`,
			want: func(*timer.Settings) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStore(t)
			if err := store.Set(KeySettings, []byte(tt.blob)); err != nil {
				t.Fatal(err)
			}
			got, err := LoadSettings(store)
			if err != nil {
				t.Fatalf("LoadSettings() error = %v", err)
			}
			want := timer.DefaultSettings()
			tt.want(&want)
			if got != want {
				t.Errorf("LoadSettings() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLoadSettings_Corrupt(t *testing.T) {
	store := createTestStore(t)
	if err := store.Set(KeySettings, []byte(`{"workDuration": "soon"}`)); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSettings(store)
	if !errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadSettings() error = %v, want ErrRecovered", err)
	}
	if got != timer.DefaultSettings() {
		t.Errorf("LoadSettings() = %+v, want defaults", got)
	}
}

func TestActiveTaskID(t *testing.T) {
	store := createTestStore(t)

	id, err := LoadActiveTaskID(store)
	if err != nil || id != "" {
		t.Fatalf("LoadActiveTaskID() = %q, %v; want empty", id, err)
	}

	if err := SaveActiveTaskID(store, "task-1-5"); err != nil {
		t.Fatal(err)
	}
	id, err = LoadActiveTaskID(store)
	if err != nil || id != "task-1-5" {
		t.Fatalf("LoadActiveTaskID() = %q, %v", id, err)
	}

	if err := SaveActiveTaskID(store, ""); err != nil {
		t.Fatal(err)
	}
	data, _, _ := store.Get(KeyActiveTaskID)
	if strings.TrimSpace(string(data)) != "null" {
		t.Errorf("cleared blob = %s, want null", data)
	}
	id, _ = LoadActiveTaskID(store)
	if id != "" {
		t.Errorf("LoadActiveTaskID() = %q, want empty", id)
	}
}

func TestLoadActiveTaskID_WrongType(t *testing.T) {
	store := createTestStore(t)
	if err := store.Set(KeyActiveTaskID, []byte(`42`)); err != nil {
		t.Fatal(err)
	}
	id, err := LoadActiveTaskID(store)
	if !errors.Is(err, ErrRecovered) || id != "" {
		t.Errorf("LoadActiveTaskID() = %q, %v", id, err)
	}
}

// memStore has no backups, exercising the plain reset path.
type memStore map[string][]byte

func (m memStore) Get(key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
func (m memStore) Set(key string, data []byte) error { m[key] = data; return nil }
func (m memStore) Close() error                      { return nil }

func TestLoad_StoreWithoutRecovery(t *testing.T) {
	store := memStore{KeyTasks: []byte("[")}
	tasks, err := LoadTasks(store)
	if !errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadTasks() error = %v, want ErrRecovered", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}
}

type failingStore struct{ memStore }

func (failingStore) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk on fire") }

func TestLoad_ReadErrorIsNotRecovery(t *testing.T) {
	_, err := LoadSettings(failingStore{})
	if err == nil || errors.Is(err, ErrRecovered) {
		t.Fatalf("LoadSettings() error = %v, want plain read error", err)
	}
}
