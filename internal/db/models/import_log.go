package models

import "time"

// ImportLog keeps the report of a CSV import so it can be fetched again.
type ImportLog struct {
	// ID is the report id handed out by the import.
	ID string `gorm:"primaryKey;size:36"`
	// GroupSetID is the group set the file was applied to.
	GroupSetID uint `gorm:"not null;index"`
	// ActorID is the user who uploaded the file.
	ActorID uint64 `gorm:"not null"`
	// Report is the JSON encoded report.
	Report []byte `gorm:"not null"`
	// GroupSet is the associated group set.
	GroupSet GroupSet `gorm:"foreignKey:GroupSetID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp of the import (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the ImportLog model.
func (ImportLog) TableName() string {
	return "import_logs"
}
