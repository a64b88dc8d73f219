package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoring_backend/models"
	"tutoring_backend/services"
)

type GroupHandler struct {
	service *services.GroupService
	logger  *zap.Logger
}

func NewGroupHandler(service *services.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{service: service, logger: logger}
}

// CreateGroup handles the creation of a new student group
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GetGroup handles retrieving one group with its roster
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, group)
}
