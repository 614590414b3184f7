package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(requestIDContextKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(RequestIDKey, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	verrs := sfa.NewValidationErrors()
	verrs.Add(sfa.GroupBasicInfo, "Name is required")
	verrs.Add(sfa.GroupPayments, "[Payment 1] Amount is required")

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"validation", verrs, http.StatusBadRequest, dto.ErrCodeValidation},
		{"wrapped validation", fmt.Errorf("submit: %w", verrs), http.StatusBadRequest, dto.ErrCodeValidation},
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"locked", shared.ErrLocked, http.StatusLocked, dto.ErrCodeLocked},
		{"deleted payment", shared.NewDomainError("PAYMENT_DELETED", "gone"), http.StatusUnprocessableEntity, dto.ErrCodePaymentDeleted},
		{"unmapped domain code", shared.NewDomainError("SALES_ITEM_LIMIT", "too many"), http.StatusInternalServerError, "ERR_SALES_ITEM_LIMIT"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(requestIDContextKey, "req-42")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_ValidationDetails(t *testing.T) {
	verrs := sfa.NewValidationErrors()
	verrs.Add(sfa.GroupSalesItems, "At least one sales item is required")

	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.HandleError(c, verrs)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"At least one sales item is required"}, resp.Error.Details["salesItems"])
	assert.Equal(t, "Sales items: At least one sales item is required", resp.Error.Message)
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.HandleError(c, nil)
	assert.Empty(t, w.Body.Bytes())
}

type fakePinger struct{ err error }

func (p fakePinger) Ping() error { return p.err }

func TestSystemHandler(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		h := NewSystemHandler("sfa-store", "1.2.0", nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/system/info", nil)

		h.GetSystemInfo(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "sfa-store", data["name"])
		assert.Equal(t, "1.2.0", data["version"])
		assert.NotEmpty(t, data["go_version"])
	})

	t.Run("healthy", func(t *testing.T) {
		h := NewSystemHandler("sfa-store", "1.2.0", fakePinger{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		h.Health(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("sfa-store", "1.2.0", fakePinger{err: errors.New("refused")})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		h.Health(c)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
