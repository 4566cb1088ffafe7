package groups

import (
	"context"

	"github.com/classgroups/classgroups/internal/auth"
	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/db/models"
)

// MemberView is a group member as shown to one viewer.
type MemberView struct {
	ProjectID uint   `json:"project_id"`
	StudentID uint64 `json:"student_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Tutorial  string `json:"tutorial,omitempty"`
}

// NewMemberView renders a project for viewer, whose role in the unit is role.
// The email is only shown to staff and to the student themself.
func NewMemberView(p *models.Project, viewer *models.User, role auth.Role) MemberView {
	v := MemberView{
		ProjectID: p.ID,
		StudentID: p.Student.ID,
		Username:  p.Student.Username,
		FirstName: p.Student.FirstName,
		LastName:  p.Student.LastName,
		Name:      p.Student.Name(),
	}

	if role.IsStaff() || (viewer != nil && viewer.ID == p.UserID) {
		v.Email = p.Student.Email
	}

	if p.Tutorial != nil {
		v.Tutorial = p.Tutorial.Abbreviation
	}

	return v
}

// Members lists the active members of a group as seen by actor.
func (s *Service) Members(
	ctx context.Context, actor *models.User, unitID, groupSetID, groupID uint,
) (out []MemberView, err error) {
	var sc *scope

	defer func() { done("group_members", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveGroup(db, unitID, groupSetID, groupID); err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupPolicy{GroupSet: sc.groupSet}, auth.ActionGetMembers,
		"Not authorised to get groups for this unit")
	if err != nil {
		return nil, err
	}

	role, err := s.gate.RoleIn(ctx, actor, sc.unit.ID)
	if err != nil {
		return nil, err
	}

	projects, err := group.ActiveProjects(db, sc.group.ID)
	if err != nil {
		return nil, err
	}

	out = make([]MemberView, 0, len(projects))
	for i := range projects {
		out = append(out, NewMemberView(&projects[i], actor, role))
	}

	return out, nil
}

// AddMember adds a student's project to a group.
func (s *Service) AddMember(
	ctx context.Context, actor *models.User, unitID, groupSetID, groupID, projectID uint,
) (view *MemberView, err error) {
	var sc *scope

	defer func() { done("group_member_add", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveGroup(db, unitID, groupSetID, groupID); err != nil {
		return nil, err
	}

	project, err := unit.Project(db, sc.unit.ID, projectID)
	if err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupSetPolicy{GroupSet: sc.groupSet}, auth.ActionJoinGroup,
		"Not authorised to manage this group")
	if err != nil {
		return nil, err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.ProjectPolicy{Project: project, Actor: actor}, auth.ActionGet,
		"Not authorised to manage this student")
	if err != nil {
		return nil, err
	}

	if _, err = group.AddMember(db, sc.group, project); err != nil {
		return nil, err
	}

	role, err := s.gate.RoleIn(ctx, actor, sc.unit.ID)
	if err != nil {
		return nil, err
	}

	v := NewMemberView(project, actor, role)

	return &v, nil
}

// RemoveMember deactivates a student's membership of a group.
func (s *Service) RemoveMember(
	ctx context.Context, actor *models.User, unitID, groupSetID, groupID, projectID uint,
) (err error) {
	var sc *scope

	defer func() { done("group_member_remove", actor, sc, err) }()

	db := s.db.WithContext(ctx)

	if sc, err = s.resolveGroup(db, unitID, groupSetID, groupID); err != nil {
		return err
	}

	project, err := unit.Project(db, sc.unit.ID, projectID)
	if err != nil {
		return err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.GroupPolicy{GroupSet: sc.groupSet}, auth.ActionManageGroup,
		"Not authorised to manage this group")
	if err != nil {
		return err
	}

	err = s.authorise(ctx, actor, sc.unit.ID, auth.ProjectPolicy{Project: project, Actor: actor}, auth.ActionGet,
		"Not authorised to manage this student")
	if err != nil {
		return err
	}

	return group.RemoveMember(db, sc.group, project)
}
