package models

import "time"

// UnitRoleName is the staff role a user holds within a unit.
type UnitRoleName string

const (
	// UnitRoleTutor marks a user teaching one or more tutorials of the unit.
	UnitRoleTutor UnitRoleName = "tutor"
	// UnitRoleConvenor marks a user running the unit.
	UnitRoleConvenor UnitRoleName = "convenor"
)

// Unit is a course unit. Group sets, tutorials and projects are scoped to it.
type Unit struct {
	// ID is the unique identifier for the unit.
	ID uint `gorm:"primaryKey"`
	// Code is the unique unit code (e.g. "COS10001").
	Code string `gorm:"unique;size:20;not null"`
	// Name is the display name of the unit.
	Name string `gorm:"size:255;not null"`
	// CreatedAt is the timestamp when the unit was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the unit was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Unit model.
func (Unit) TableName() string {
	return "units"
}

// UnitRole assigns a staff role within a unit to a user.
// Students have no UnitRole; their enrolment is their Project.
type UnitRole struct {
	// ID is the unique identifier for the role assignment.
	ID uint `gorm:"primaryKey"`
	// UnitID is the unit the role applies to.
	UnitID uint `gorm:"not null;uniqueIndex:idx_unit_role_user"`
	// UserID is the staff member.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_unit_role_user"`
	// Role is either tutor or convenor.
	Role UnitRoleName `gorm:"type:varchar(20);not null"`
	// Unit is the associated unit.
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE"`
	// User is the associated user.
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the UnitRole model.
func (UnitRole) TableName() string {
	return "unit_roles"
}

// Tutorial is a scheduled class section of a unit.
type Tutorial struct {
	ID uint `gorm:"primaryKey"`
	// UnitID is the owning unit.
	UnitID uint `gorm:"not null;uniqueIndex:idx_tutorial_unit_abbr"`
	// Abbreviation identifies the tutorial within its unit (e.g. "LA1-01"); used in CSV files.
	Abbreviation string `gorm:"size:50;not null;uniqueIndex:idx_tutorial_unit_abbr"`
	// TutorID is the user teaching the tutorial, if any.
	TutorID *uint64
}

// TableName specifies the database table name for the Tutorial model.
func (Tutorial) TableName() string {
	return "tutorials"
}

// Project is a student's enrolment in a unit.
type Project struct {
	ID uint `gorm:"primaryKey"`
	// UnitID is the unit the student is enrolled in.
	UnitID uint `gorm:"not null;uniqueIndex:idx_project_unit_user"`
	// UserID is the enrolled student.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_project_unit_user"`
	// TutorialID is the tutorial the student attends, nil when not allocated.
	TutorialID *uint
	// Student is the enrolled user.
	Student User `gorm:"foreignKey:UserID"`
	// Tutorial is the allocated tutorial, if loaded.
	Tutorial *Tutorial `gorm:"foreignKey:TutorialID"`
}

// TableName specifies the database table name for the Project model.
func (Project) TableName() string {
	return "projects"
}

// InTutorial reports whether the project is allocated to the given tutorial.
func (p *Project) InTutorial(tutorialID uint) bool {
	return p.TutorialID != nil && *p.TutorialID == tutorialID
}
