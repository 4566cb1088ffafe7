package models

import (
	"fmt"
	"time"
)

// Group is a named collection of students under one group set and one tutorial.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey" json:"id"`
	// GroupSetID is the owning group set.
	GroupSetID uint `gorm:"not null;uniqueIndex:idx_group_set_name;uniqueIndex:idx_group_set_number" json:"group_set_id"`
	// TutorialID is the tutorial the group meets in.
	TutorialID uint `gorm:"not null" json:"tutorial_id"`
	// Name is unique within the group set (case-sensitive).
	Name string `gorm:"size:255;not null;uniqueIndex:idx_group_set_name" json:"name"`
	// Number is unique within the group set and never reused.
	Number int `gorm:"not null;uniqueIndex:idx_group_set_number" json:"number"`
	// GroupSet is the associated group set.
	GroupSet GroupSet `gorm:"foreignKey:GroupSetID;constraint:OnDelete:CASCADE" json:"-"`
	// Tutorial is the associated tutorial.
	Tutorial Tutorial `gorm:"foreignKey:TutorialID" json:"-"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "student_groups"
}

// DefaultGroupName is the name given to a group created without one.
func DefaultGroupName(number int) string {
	return fmt.Sprintf("Group %d", number)
}

// GroupMembership is one entry of the append-only membership log of a group.
// Rows are never deleted while their group exists: removing a member flips Active,
// and re-adding the same project appends a new row.
type GroupMembership struct {
	// ID is the unique identifier for the membership row; it also orders the log.
	ID uint `gorm:"primaryKey"`
	// GroupID is the group joined.
	GroupID uint `gorm:"not null;index;uniqueIndex:idx_membership_active"`
	// ProjectID is the member's enrolment.
	ProjectID uint `gorm:"not null;index;uniqueIndex:idx_membership_active"`
	// Active is true until the member is removed.
	Active bool `gorm:"not null;default:true"`
	// ActiveSlot is 1 while Active and NULL afterwards.
	// Unique together with (GroupID, ProjectID), so at most one active row per pair can exist.
	ActiveSlot *uint8 `gorm:"uniqueIndex:idx_membership_active"`
	// Group is the associated group.
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// Project is the associated project.
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the member was added (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the row was last changed (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the GroupMembership model.
func (GroupMembership) TableName() string {
	return "group_memberships"
}

// ActiveSlotValue is the ActiveSlot of an active membership.
func ActiveSlotValue() *uint8 {
	one := uint8(1)
	return &one
}
