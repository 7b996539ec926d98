//go:build !integration

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/middleware"
	"github.com/guttosm/pallet-service/internal/service"
)

func newLocaleContext(acceptLanguage string) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := newJSONContext("")
	if acceptLanguage != "" {
		c.Request.Header.Set(i18n.AcceptLanguageHeader, acceptLanguage)
	}
	middleware.RequestID()(c)
	return c, w
}

func TestResponseBuilder_PlanView(t *testing.T) {
	view := service.PlanView{
		OrderID:  "ORD-9",
		Order:    model.Order{ID: "ORD-9", Reference: "INV-1", WeightTier: "std"},
		Packages: []model.Package{{ID: "pkg-1"}},
		Totals:   model.Totals{WeightTier: "std", TotalWeight: decimal.NewFromFloat(12.5), Pallets: 1},
		IsDirty:  true,
	}

	tests := []struct {
		name       string
		send       func(*ResponseBuilder)
		statusCode int
	}{
		{
			name:       "opened plan",
			send:       func(b *ResponseBuilder) { b.SuccessCreated(view) },
			statusCode: http.StatusCreated,
		},
		{
			name:       "current plan",
			send:       func(b *ResponseBuilder) { b.SuccessOK(view) },
			statusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newLocaleContext("")

			tt.send(NewResponseBuilder(c))

			require.Equal(t, tt.statusCode, w.Code)
			var resp struct {
				Data      map[string]interface{} `json:"data"`
				RequestID string                 `json:"request_id"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
			assert.Equal(t, "ORD-9", resp.Data["order_id"])
			assert.Equal(t, true, resp.Data["is_dirty"])
			totals, ok := resp.Data["totals"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "12.5", totals["total_weight"])
		})
	}
}

func TestResponseBuilder_TranslatesMessages(t *testing.T) {
	tests := []struct {
		name           string
		acceptLanguage string
		messageKey     string
		expected       string
	}{
		{"default locale", "", i18n.ErrKeySessionNotFound, "No plan exists for this order"},
		{"portuguese", "pt-BR,pt;q=0.9", i18n.ErrKeySessionNotFound, "Não existe plano para este pedido"},
		{"dutch", "nl-NL", i18n.ErrKeySessionNotFound, "Er bestaat geen planning voor deze order"},
		{"unsupported falls back to english", "ja", i18n.ErrKeyBackendNotConfigured, "No persistence backend is configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newLocaleContext(tt.acceptLanguage)

			NewResponseBuilder(c).Error(http.StatusNotFound, tt.messageKey, nil)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrCodeNotFound, resp.Error)
			assert.Equal(t, tt.expected, resp.Message)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestResponseBuilder_ErrorRecordsCause(t *testing.T) {
	c, _ := newLocaleContext("")
	cause := errors.New("connection reset")

	NewResponseBuilder(c).Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, cause)

	require.Len(t, c.Errors, 1)
	assert.ErrorIs(t, c.Errors[0].Err, cause)
}

func TestResponseBuilder_PooledResponsesDoNotLeak(t *testing.T) {
	c, w := newLocaleContext("")
	NewResponseBuilder(c).ErrorWithDetails(http.StatusUnprocessableEntity, i18n.RejectionKey("fit-failure"),
		map[string]interface{}{"reason": "fit-failure", "operation": "add-product"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	c, w = newLocaleContext("")
	NewResponseBuilder(c).Error(http.StatusConflict, i18n.ErrKeySessionClosed, nil)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeFromStatus(http.StatusConflict), resp.Error)
	assert.Nil(t, resp.Details)
	assert.NotContains(t, w.Body.String(), "fit-failure")
}

func TestEnvelopePool_ZeroesOnPut(t *testing.T) {
	var pool envelopePool[dto.ErrorResponse]
	resp := pool.get()
	resp.Error = dto.ErrCodeRejected
	resp.Details = map[string]interface{}{"reason": "no-pallet"}

	pool.put(resp)

	assert.Equal(t, dto.ErrorResponse{}, *resp)
}

func TestResponseBuilder_NoContent(t *testing.T) {
	c, w := newLocaleContext("")

	NewResponseBuilder(c).NoContent()
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
