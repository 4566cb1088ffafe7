package auth

// Role is the part an actor plays within one unit.
type Role string

// Roles, weakest first.
const (
	// RoleNone is an actor with no relation to the unit.
	RoleNone Role = ""
	// RoleStudent is an actor enrolled in the unit through a project.
	RoleStudent Role = "student"
	// RoleTutor is an actor teaching in the unit.
	RoleTutor Role = "tutor"
	// RoleConvenor is an actor running the unit.
	RoleConvenor Role = "convenor"
	// RoleAdmin is a system administrator, convenor of every unit.
	RoleAdmin Role = "admin"
)

// IsStaff reports whether the role carries unit-wide tutor capability.
func (r Role) IsStaff() bool {
	return r == RoleTutor || r == RoleConvenor || r == RoleAdmin
}

// Action is a capability checked against an entity.
type Action string

// Actions checked by the group and similarity engines.
const (
	// ActionUpdate changes a unit's configuration: group sets and CSV exchange.
	ActionUpdate Action = "update"
	// ActionManageSimilarity dismisses or deletes plagiarism match links of a unit.
	ActionManageSimilarity Action = "manage_similarity"
	// ActionGet reads a student's project.
	ActionGet Action = "get"
	// ActionGetGroups lists the groups of a group set.
	ActionGetGroups Action = "get_groups"
	// ActionCreateGroup creates a group in a group set.
	ActionCreateGroup Action = "create_group"
	// ActionJoinGroup adds a project to a group of the set.
	ActionJoinGroup Action = "join_group"
	// ActionGetMembers lists the members of a group.
	ActionGetMembers Action = "get_members"
	// ActionManageGroup renames, moves or deletes a group and removes its members.
	ActionManageGroup Action = "manage_group"
)

// Permissions is a default permission table: the actions each role may perform.
type Permissions map[Role][]Action

// Allows reports whether the table grants action to role.
func (p Permissions) Allows(role Role, action Action) bool {
	for _, a := range p[role] {
		if a == action {
			return true
		}
	}

	return false
}

var (
	// UnitPermissions is the default table for units.
	UnitPermissions = Permissions{
		RoleTutor:    {ActionManageSimilarity},
		RoleConvenor: {ActionUpdate, ActionManageSimilarity},
		RoleAdmin:    {ActionUpdate, ActionManageSimilarity},
	}

	// ProjectPermissions is the default table for projects.
	ProjectPermissions = Permissions{
		RoleStudent:  {ActionGet},
		RoleTutor:    {ActionGet},
		RoleConvenor: {ActionGet},
		RoleAdmin:    {ActionGet},
	}

	// GroupSetPermissions is the default table for group sets.
	GroupSetPermissions = Permissions{
		RoleStudent:  {ActionGetGroups},
		RoleTutor:    {ActionGetGroups, ActionCreateGroup, ActionJoinGroup},
		RoleConvenor: {ActionGetGroups, ActionCreateGroup, ActionJoinGroup},
		RoleAdmin:    {ActionGetGroups, ActionCreateGroup, ActionJoinGroup},
	}

	// GroupPermissions is the default table for groups.
	GroupPermissions = Permissions{
		RoleStudent:  {ActionGetMembers},
		RoleTutor:    {ActionGetMembers, ActionManageGroup},
		RoleConvenor: {ActionGetMembers, ActionManageGroup},
		RoleAdmin:    {ActionGetMembers, ActionManageGroup},
	}
)
