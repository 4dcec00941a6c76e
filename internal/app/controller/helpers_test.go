package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRespondUnexpected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"check constraint on rating", errors.New("CHECK constraint failed: chk_ratings_value"), http.StatusBadRequest, apperrors.RatingInvalidValue},
		{"duplicated key", fmt.Errorf("create store: %w", gorm.ErrDuplicatedKey), http.StatusBadRequest, apperrors.ResourceAlreadyExists},
		{"foreign key", fmt.Errorf("create rating: %w", gorm.ErrForeignKeyViolated), http.StatusNotFound, apperrors.ResourceNotFound},
		{"invalid input", fmt.Errorf("%w: bad", service.ErrInvalidInput), http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"connection lost", errors.New("driver: bad connection"), http.StatusInternalServerError, apperrors.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondUnexpected(c, logger.Get(), "Failed", tt.err, map[string]interface{}{"id": 1})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.NotContains(t, w.Body.String(), "driver")
		})
	}
}
