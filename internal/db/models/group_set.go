package models

import "time"

// GroupSet is a named configuration governing a family of groups within a unit.
// Its three flags decide what students may do with the groups it owns.
type GroupSet struct {
	// ID is the unique identifier for the group set.
	ID uint `gorm:"primaryKey" json:"id"`
	// UnitID is the unit owning the group set.
	UnitID uint `gorm:"not null;index" json:"unit_id"`
	// Name is the display name of the group set.
	Name string `gorm:"size:255;not null" json:"name"`
	// AllowStudentsToCreateGroups grants students the create_group action.
	AllowStudentsToCreateGroups bool `gorm:"default:false" json:"allow_students_to_create_groups"`
	// AllowStudentsToManageGroups grants students join_group on the set and manage_group on its groups.
	AllowStudentsToManageGroups bool `gorm:"default:false" json:"allow_students_to_manage_groups"`
	// KeepGroupsInSameClass requires every member to share the group's tutorial.
	KeepGroupsInSameClass bool `gorm:"default:false" json:"keep_groups_in_same_class"`
	// LastGroupNumber is the highest group number ever issued in this set.
	// Numbers are never reused, even after the group holding them is deleted.
	LastGroupNumber int `gorm:"not null;default:0" json:"-"`
	// Unit is the associated unit.
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the group set was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the group set was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the GroupSet model.
func (GroupSet) TableName() string {
	return "group_sets"
}
