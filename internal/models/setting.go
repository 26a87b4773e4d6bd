package models

// Setting stores small persistent key/value settings in SQLite.
// Intentionally generic, to avoid a new table for every tiny feature.
type Setting struct {
	Key   string `gorm:"primaryKey;size:128" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
