package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoring_backend/models"
	"tutoring_backend/services"
)

type ScheduleHandler struct {
	service *services.ScheduleService
	logger  *zap.Logger
}

func NewScheduleHandler(service *services.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, logger: logger}
}

// GetByStudent returns the lessons of one student ordered by date and time
func (h *ScheduleHandler) GetByStudent(c *gin.Context) {
	items, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetByGroup returns the lessons of one group ordered by date and time
func (h *ScheduleHandler) GetByGroup(c *gin.Context) {
	items, err := h.service.ListByGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ScheduleHandler) GetGroupWithStudents(c *gin.Context) {
	out, err := h.service.GroupWithStudents(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ScheduleHandler) UpdateAttendance(c *gin.Context) {
	var req models.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	item, err := h.service.UpdateAttendance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ScheduleHandler) UpdateGroupAttendance(c *gin.Context) {
	var req models.GroupAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	item, err := h.service.UpdateGroupAttendance(c.Request.Context(), c.Param("id"), req.Attendance)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	var req models.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	item, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule item deleted", "deletedItem": item})
}

func (h *ScheduleHandler) DeleteMultiple(c *gin.Context) {
	ids, err := bindIDs(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	n, err := h.service.DeleteMany(c.Request.Context(), ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule items deleted", "deletedCount": n})
}
