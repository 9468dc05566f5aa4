package handler

import (
	"net/http"

	"closetube/internal/dto"
	"closetube/internal/service"
	"closetube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type GroupHandler interface {
	ListGroups(c *gin.Context)
}

type groupHandler struct {
	catalog service.CatalogService
}

func NewGroupHandler(catalog service.CatalogService) GroupHandler {
	return &groupHandler{catalog: catalog}
}

func (h *groupHandler) ListGroups(c *gin.Context) {
	groups, err := h.catalog.ListGroups(c.Request.Context())
	if err != nil {
		logger.Log.WithError(err).Error("group listing failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}

	response := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		response = append(response, dto.ToGroupResponse(&groups[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": response})
}
