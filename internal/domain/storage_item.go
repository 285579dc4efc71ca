package domain

import "time"

// StorageItem is one key/value pair of the durable local storage. It plays
// the part a browser's localStorage plays for a web client: string keys,
// opaque string values.
type StorageItem struct {
	Key       string    `gorm:"type:varchar(191);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (StorageItem) TableName() string { return "local_storage" }
