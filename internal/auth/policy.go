package auth

import "github.com/classgroups/classgroups/internal/db/models"

// Policy resolves whether a role may perform an action on one entity.
type Policy interface {
	Resolve(role Role, action Action) bool
}

// UnitPolicy applies UnitPermissions.
type UnitPolicy struct{}

// Resolve implements Policy.
func (UnitPolicy) Resolve(role Role, action Action) bool {
	return UnitPermissions.Allows(role, action)
}

// ProjectPolicy applies ProjectPermissions; a student may only act on their own project.
type ProjectPolicy struct {
	Project *models.Project
	Actor   *models.User
}

// Resolve implements Policy.
func (p ProjectPolicy) Resolve(role Role, action Action) bool {
	if role == RoleStudent && (p.Actor == nil || p.Project == nil || p.Project.UserID != p.Actor.ID) {
		return false
	}

	return ProjectPermissions.Allows(role, action)
}

// GroupSetPolicy applies GroupSetPermissions, widened for students by the set's flags.
type GroupSetPolicy struct {
	GroupSet *models.GroupSet
}

// Resolve implements Policy.
func (p GroupSetPolicy) Resolve(role Role, action Action) bool {
	if GroupSetPermissions.Allows(role, action) {
		return true
	}

	if role != RoleStudent || p.GroupSet == nil {
		return false
	}

	switch action {
	case ActionCreateGroup:
		return p.GroupSet.AllowStudentsToCreateGroups
	case ActionJoinGroup:
		return p.GroupSet.AllowStudentsToManageGroups
	default:
		return false
	}
}

// GroupPolicy applies GroupPermissions; groups inherit student management from their set.
type GroupPolicy struct {
	GroupSet *models.GroupSet
}

// Resolve implements Policy.
func (p GroupPolicy) Resolve(role Role, action Action) bool {
	if GroupPermissions.Allows(role, action) {
		return true
	}

	return role == RoleStudent && action == ActionManageGroup &&
		p.GroupSet != nil && p.GroupSet.AllowStudentsToManageGroups
}
