package groupset

type createGroupSetRequest struct {
	GroupSet struct {
		Name                        string `json:"name" validate:"required,max=255"`
		AllowStudentsToCreateGroups bool   `json:"allow_students_to_create_groups"`
		AllowStudentsToManageGroups bool   `json:"allow_students_to_manage_groups"`
		KeepGroupsInSameClass       bool   `json:"keep_groups_in_same_class"`
	} `json:"group_set"`
}

type updateGroupSetRequest struct {
	GroupSet struct {
		Name                        *string `json:"name" validate:"omitempty,min=1,max=255"`
		AllowStudentsToCreateGroups *bool   `json:"allow_students_to_create_groups"`
		AllowStudentsToManageGroups *bool   `json:"allow_students_to_manage_groups"`
		KeepGroupsInSameClass       *bool   `json:"keep_groups_in_same_class"`
	} `json:"group_set"`
}

type createGroupRequest struct {
	Group struct {
		Name       string `json:"name" validate:"max=255"`
		TutorialID uint   `json:"tutorial_id" validate:"required"`
	} `json:"group"`
}

type updateGroupRequest struct {
	Group struct {
		Name       *string `json:"name" validate:"omitempty,max=255"`
		TutorialID *uint   `json:"tutorial_id" validate:"omitempty,min=1"`
	} `json:"group"`
}

type addMemberRequest struct {
	ProjectID uint `json:"project_id" validate:"required"`
}
