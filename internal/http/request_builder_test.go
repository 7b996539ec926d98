//go:build !integration

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/middleware"
)

func newJSONContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestBuildRequest_Move(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedTo  int
		expectError bool
	}{
		{
			name:       "valid request",
			body:       `{"from": 0, "to": 3}`,
			expectedTo: 3,
		},
		{
			name:        "invalid JSON",
			body:        `{"from": invalid}`,
			expectError: true,
		},
		{
			name:        "missing required field",
			body:        `{"from": 1}`,
			expectError: true,
		},
		{
			name:        "empty body",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(tt.body)

			request, err := BuildRequest[dto.MoveRequest](c)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, request)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, request.To)
			assert.Equal(t, tt.expectedTo, *request.To)
		})
	}
}

func TestBuildRequest_AssignPallet(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name: "valid request",
			body: `{"template_id": "eur"}`,
		},
		{
			name:        "missing template",
			body:        `{}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(tt.body)

			result, err := BuildRequest[dto.AssignPalletRequest](c)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "eur", result.TemplateID)
		})
	}
}

func TestBuildRequestAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name: "valid request",
			body: `{"products": [{"id": "SKU-1", "count": 2}]}`,
		},
		{
			name:        "blank product id",
			body:        `{"products": [{"id": " ", "count": 2}]}`,
			expectError: true,
		},
		{
			name:        "no products",
			body:        `{"products": []}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(tt.body)

			result, err := BuildRequestAndValidate[dto.OpenPlanRequest](c)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Products, 1)
		})
	}
}

func TestResponseBuilder_ErrorWithKey(t *testing.T) {
	c, w := newJSONContext("")
	middleware.RequestID()(c)

	NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errorResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, dto.ErrCodeInvalidRequest, errorResp.Error)
	assert.NotEmpty(t, errorResp.Message)
	assert.NotEmpty(t, errorResp.RequestID)
}

func TestResponseBuilder_ErrorWithDetails(t *testing.T) {
	c, w := newJSONContext("")

	NewResponseBuilder(c).ErrorWithDetails(http.StatusUnprocessableEntity, i18n.RejectionKey("fit-failure"),
		map[string]interface{}{"reason": "fit-failure"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errorResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResp))
	assert.Equal(t, dto.ErrCodeRejected, errorResp.Error)
	assert.Equal(t, "fit-failure", errorResp.Details["reason"])
}
