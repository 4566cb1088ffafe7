// Package unit looks up the unit-scoped entities the group engine reads but never changes:
// units, tutorials, projects and users.
package unit

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/db/models"
	"github.com/classgroups/classgroups/internal/fault"
)

const unitIDQueryPattern = "unit_id = ?"

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Get retrieves a unit by its ID.
func Get(db *gorm.DB, id uint) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var unit models.Unit
	if err := db.First(&unit, id).Error; err != nil {
		return nil, notFound(err, "Unable to locate unit")
	}

	return &unit, nil
}

// GetByCode retrieves a unit by its code.
func GetByCode(db *gorm.DB, code string) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var unit models.Unit
	if err := db.Where("code = ?", code).First(&unit).Error; err != nil {
		return nil, notFound(err, "Unable to locate unit %s", code)
	}

	return &unit, nil
}

// Tutorial retrieves a tutorial of the unit.
func Tutorial(db *gorm.DB, unitID, tutorialID uint) (*models.Tutorial, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tutorial models.Tutorial
	if err := db.Where(unitIDQueryPattern, unitID).First(&tutorial, tutorialID).Error; err != nil {
		return nil, notFound(err, "Unable to locate tutorial for unit")
	}

	return &tutorial, nil
}

// TutorialByAbbreviation retrieves a tutorial of the unit by its abbreviation.
func TutorialByAbbreviation(db *gorm.DB, unitID uint, abbreviation string) (*models.Tutorial, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tutorial models.Tutorial

	err := db.Where(unitIDQueryPattern, unitID).
		Where("abbreviation = ?", abbreviation).
		First(&tutorial).Error
	if err != nil {
		return nil, notFound(err, "Unable to locate tutorial '%s' for unit", abbreviation)
	}

	return &tutorial, nil
}

// Project retrieves a project of the unit with its student and tutorial.
func Project(db *gorm.DB, unitID, projectID uint) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var project models.Project

	err := db.Preload("Student").Preload("Tutorial").
		Where(unitIDQueryPattern, unitID).
		First(&project, projectID).Error
	if err != nil {
		return nil, notFound(err, "Unable to locate project for unit")
	}

	return &project, nil
}

// ProjectByUsername retrieves the project of a student in the unit.
func ProjectByUsername(db *gorm.DB, unitID uint, username string) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var project models.Project

	err := db.Preload("Student").Preload("Tutorial").
		Joins("JOIN users ON users.id = projects.user_id").
		Where("projects.unit_id = ? AND users.username = ?", unitID, username).
		First(&project).Error
	if err != nil {
		return nil, notFound(err, "Unable to locate student '%s' in unit", username)
	}

	return &project, nil
}

// UserByUsername retrieves a user by username.
func UserByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "Unable to locate user %s", username)
	}

	return &user, nil
}

// UserByID retrieves a user by ID.
func UserByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err, "Unable to locate user")
	}

	return &user, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.NotFound(format, args...)
	}

	return fmt.Errorf("lookup failed: %w", err)
}
