// Package importlog stores the reports of CSV imports.
package importlog

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
)

const groupSetQueryPattern = "group_set_id = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrIDEmpty is returned when saving a report without an id.
	ErrIDEmpty = errors.New("import log id cannot be empty")
)

// Save stores report as the log entry id of the group set.
func Save(db *gorm.DB, id string, groupSetID uint, actorID uint64, report any) (*models.ImportLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if id == "" {
		return nil, ErrIDEmpty
	}

	value, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	entry := &models.ImportLog{ID: id, GroupSetID: groupSetID, ActorID: actorID, Report: value}

	if err = db.Omit("GroupSet").Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

// Load decodes the report id of the group set into report.
func Load(db *gorm.DB, groupSetID uint, id string, report any) error {
	if db == nil {
		return ErrDBNil
	}

	var entry models.ImportLog

	result := db.Where(groupSetQueryPattern, groupSetID).Where("id = ?", id).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fault.NotFound("Unable to locate import %s", id)
		}

		return result.Error
	}

	return json.Unmarshal(entry.Report, report)
}

// List returns the log entries of the group set, newest first.
func List(db *gorm.DB, groupSetID uint) ([]models.ImportLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var entries []models.ImportLog

	result := db.Where(groupSetQueryPattern, groupSetID).Order("created_at DESC").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
