package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"tutoring_backend/apperr"
	"tutoring_backend/models"
)

// bindOptionalJSON binds the body into obj and accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return bindError(err)
}

// formFiles returns the uploaded "files" parts. A body that is not multipart
// carries no files.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.NewValidationError("invalid form data: " + err.Error())
	}
	return form.File["files"], nil
}

// bindIDs reads the bulk delete body.
func bindIDs(c *gin.Context) ([]string, error) {
	var req models.DeleteManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.NewValidationError("expected a non-empty array of ids",
			apperr.FieldError{Field: "ids", Error: "must be a non-empty array"})
	}
	return req.IDs, nil
}
