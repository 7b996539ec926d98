package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pallet-service/internal/domain/dto"
	"github.com/guttosm/pallet-service/internal/i18n"
	"github.com/guttosm/pallet-service/internal/middleware"
)

// envelopePool recycles response envelopes; every planner operation answers
// with one, so the pool keeps the hot path free of per-request allocations.
type envelopePool[T any] struct {
	pool sync.Pool
}

func (p *envelopePool[T]) get() *T {
	if v, ok := p.pool.Get().(*T); ok {
		return v
	}
	return new(T)
}

// put zeroes v before recycling it so no plan data outlives its request.
func (p *envelopePool[T]) put(v *T) {
	var zero T
	*v = zero
	p.pool.Put(v)
}

var (
	successEnvelopes envelopePool[dto.SuccessResponse]
	errorEnvelopes   envelopePool[dto.ErrorResponse]
)

// BuildRequest decodes the JSON body of c into a new T.
func BuildRequest[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Validator is implemented by requests with rules beyond their binding tags.
type Validator interface {
	Validate() error
}

// BuildRequestAndValidate decodes the body and runs Validate when T implements Validator.
func BuildRequestAndValidate[T any](c *gin.Context) (*T, error) {
	req, err := BuildRequest[T](c)
	if err != nil {
		return nil, err
	}
	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// ResponseBuilder writes the JSON envelopes of the API.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a response builder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success wraps data in a success envelope carrying the request id.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	resp := successEnvelopes.get()
	defer successEnvelopes.put(resp)

	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	// rendering is synchronous, the envelope is free again once JSON returns
	b.c.JSON(statusCode, resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 Created response with the given data.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// NoContent answers 204 for deletions and closed plans.
func (b *ResponseBuilder) NoContent() {
	b.c.Status(http.StatusNoContent)
}

// Error aborts with a translated error envelope.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorWithDetails(statusCode, messageKey, nil, err)
}

// ErrorWithDetails aborts with a translated error envelope carrying details,
// e.g. the rejection reason of an allocation operation and the unchanged plan.
// err, when set, is attached to the context for the error handler to log.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, messageKey string, details map[string]interface{}, err error) {
	resp := errorEnvelopes.get()
	defer errorEnvelopes.put(resp)

	resp.Error = dto.ErrCodeFromStatus(statusCode)
	resp.Message = i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	resp.Details = details
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(statusCode, resp)
}
