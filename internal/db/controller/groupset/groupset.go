// Package groupset provides persistence for group sets.
package groupset

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Changes is a partial update of a group set; nil fields are left untouched.
type Changes struct {
	Name                        *string
	AllowStudentsToCreateGroups *bool
	AllowStudentsToManageGroups *bool
	KeepGroupsInSameClass       *bool
}

func (c Changes) columns() map[string]any {
	cols := map[string]any{}

	if c.Name != nil {
		cols["name"] = *c.Name
	}

	if c.AllowStudentsToCreateGroups != nil {
		cols["allow_students_to_create_groups"] = *c.AllowStudentsToCreateGroups
	}

	if c.AllowStudentsToManageGroups != nil {
		cols["allow_students_to_manage_groups"] = *c.AllowStudentsToManageGroups
	}

	if c.KeepGroupsInSameClass != nil {
		cols["keep_groups_in_same_class"] = *c.KeepGroupsInSameClass
	}

	return cols
}

// Get retrieves a group set owned by the unit.
func Get(db *gorm.DB, unitID, id uint) (*models.GroupSet, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var gs models.GroupSet

	err := db.Where("unit_id = ?", unitID).First(&gs, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate group set for unit")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group set: %w", err)
	}

	return &gs, nil
}

// Lock re-reads the group set inside tx, holding its row until tx ends.
func Lock(tx *gorm.DB, id uint) (*models.GroupSet, error) {
	var gs models.GroupSet

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gs, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("Unable to locate group set for unit")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to lock group set: %w", err)
	}

	return &gs, nil
}

// Create persists a new group set.
func Create(db *gorm.DB, gs *models.GroupSet) error {
	if db == nil {
		return ErrDBNil
	}

	if gs.Name == "" {
		return fault.Invalid("name is required")
	}

	if err := db.Omit(clause.Associations).Create(gs).Error; err != nil {
		return fault.Validation(err)
	}

	return nil
}

// Update applies the changes and reloads gs.
func Update(db *gorm.DB, gs *models.GroupSet, changes Changes) error {
	if db == nil {
		return ErrDBNil
	}

	if changes.Name != nil && *changes.Name == "" {
		return fault.Invalid("name is required")
	}

	if cols := changes.columns(); len(cols) > 0 {
		if err := db.Model(&models.GroupSet{}).Where("id = ?", gs.ID).Updates(cols).Error; err != nil {
			return fault.Validation(err)
		}
	}

	if err := db.First(gs, gs.ID).Error; err != nil {
		return fmt.Errorf("failed to reload group set: %w", err)
	}

	return nil
}

// Delete removes the group set with its groups, their membership logs and its import logs.
func Delete(db *gorm.DB, gs *models.GroupSet) error {
	if db == nil {
		return ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		groups := tx.Model(&models.Group{}).Select("id").Where("group_set_id = ?", gs.ID)

		if err := tx.Where("group_id IN (?)", groups).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_set_id = ?", gs.ID).Delete(&models.Group{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_set_id = ?", gs.ID).Delete(&models.ImportLog{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.GroupSet{}, gs.ID).Error
	})

	return fault.Validation(err)
}
