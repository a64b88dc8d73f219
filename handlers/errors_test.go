package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"tutoring_backend/apperr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      apperr.NewValidationError("must specify student or group"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"must specify student or group"}`,
		},
		{
			name:     "validation with fields",
			err:      apperr.NewValidationError("bad", apperr.FieldError{Field: "duration", Error: "too short"}),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"bad","fields":{"duration":"too short"}}`,
		},
		{
			name:     "not found",
			err:      apperr.NewNotFoundError("homework"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"homework not found"}`,
		},
		{
			name:     "store failure",
			err:      apperr.Store("find homework", fmt.Errorf("connection refused")),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Server error","details":"connection refused"}`,
		},
		{
			name:     "unclassified",
			err:      fmt.Errorf("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Server error","details":"boom"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, zap.NewNop(), tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
