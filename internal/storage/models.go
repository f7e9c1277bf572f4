package storage

import "time"

// blobModel is one row of the SQLite blobs table.
type blobModel struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (blobModel) TableName() string { return "blobs" }

// Blob keys written by the widget.
const (
	KeySettings     = "settings"
	KeyTasks        = "tasks"
	KeyActiveTaskID = "activeTaskId"
)

// Keys returns every blob key the application persists.
func Keys() []string {
	return []string{KeySettings, KeyTasks, KeyActiveTaskID}
}
