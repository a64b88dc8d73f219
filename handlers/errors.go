package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tutoring_backend/apperr"
)

// respondError writes err with the status of its kind. Anything that is not
// a validation or not-found error is a server error and gets logged.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		ve  *apperr.ValidationError
		nf  *apperr.NotFoundError
		se  *apperr.StoreError
		vEs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &vEs):
		fields := make(map[string]string, len(vEs))
		for _, fe := range vEs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Message}
		if len(ve.Fields) > 0 {
			fields := make(map[string]string, len(ve.Fields))
			for _, fe := range ve.Fields {
				fields[fe.Field] = fe.Error
			}
			body["fields"] = fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &se):
		logger.Error("Store operation failed",
			zap.String("op", se.Op),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "details": se.Details()})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "details": errors.Cause(err).Error()})
	}
}

// bindError turns a request decoding failure into a ValidationError unless
// it already is one or the validator produced field errors.
func bindError(err error) error {
	var (
		vEs validator.ValidationErrors
		ve  *apperr.ValidationError
	)
	if errors.As(err, &vEs) || errors.As(err, &ve) {
		return err
	}
	return apperr.NewValidationError(err.Error())
}
