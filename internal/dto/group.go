package dto

import "closetube/internal/model"

type GroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func ToGroupResponse(group *model.Group) GroupResponse {
	return GroupResponse{
		ID:   group.ID,
		Name: group.Name,
	}
}
