package groupset

import "github.com/classgroups/classgroups/internal/db/models"

type groupResponse struct {
	*models.Group
	Tutorial string `json:"tutorial"`
}

func newGroupResponse(g *models.Group) groupResponse {
	return groupResponse{Group: g, Tutorial: g.Tutorial.Abbreviation}
}
