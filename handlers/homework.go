package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoring_backend/models"
	"tutoring_backend/services"
)

type HomeworkHandler struct {
	service *services.HomeworkService
	logger  *zap.Logger
}

func NewHomeworkHandler(service *services.HomeworkService, logger *zap.Logger) *HomeworkHandler {
	return &HomeworkHandler{service: service, logger: logger}
}

func (h *HomeworkHandler) GetByStudent(c *gin.Context) {
	items, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *HomeworkHandler) GetByGroup(c *gin.Context) {
	items, err := h.service.ListByGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create handles a multipart form with the assignment fields and its files
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req models.CreateHomeworkRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	files, err := formFiles(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), req, files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HomeworkHandler) UploadAnswer(c *gin.Context) {
	var req models.UploadAnswerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	files, err := formFiles(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	item, err := h.service.UploadAnswer(c.Request.Context(), req, files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HomeworkHandler) UpdateGrade(c *gin.Context) {
	var req models.GradeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	item, err := h.service.UpdateGrade(c.Request.Context(), c.Param("id"), req.Grade)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HomeworkHandler) UpdateStudentGrade(c *gin.Context) {
	var req models.GradeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	item, err := h.service.UpdateStudentGrade(c.Request.Context(), c.Param("id"), c.Param("studentId"), req.Grade)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HomeworkHandler) Delete(c *gin.Context) {
	item, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Homework deleted", "deletedItem": item})
}

func (h *HomeworkHandler) DeleteMultiple(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"message": "Homework deleted", "deletedCount": n})
}
