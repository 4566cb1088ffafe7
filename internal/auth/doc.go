// Package auth decides what an actor may do within a unit.
//
// A check runs in two steps. The Service first resolves the actor's Role in
// the unit that owns the target entity:
//   - RoleAdmin for system administrators
//   - RoleConvenor or RoleTutor from the unit_roles table
//   - RoleStudent when the actor has a project in the unit
//   - RoleNone otherwise
//
// The entity's Policy then maps (role, action) to allow or deny. Each policy
// starts from a default Permissions table; GroupSetPolicy and GroupPolicy widen
// it for students according to the group set's flags, and ProjectPolicy narrows
// it to the student's own project.
//
// Example usage:
//
//	gate := auth.NewService(db)
//
//	ok, err := gate.Authorise(ctx, actor, unit.ID, auth.GroupSetPolicy{GroupSet: gs}, auth.ActionCreateGroup)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return fault.Forbidden("Not authorised to create a group for this unit")
//	}
package auth
