package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	appctx "comercio/internal/core/context"
	"comercio/internal/infrastructure/http/v1/dto"
)

// BaseHandler carries the binding and response helpers every handler
// embeds. Errors are registered on the gin context and rendered by the
// ErrorHandler middleware.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds the request body, registering a validation error on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters, registering a validation error on failure.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error and aborts; the middleware renders it.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// HandleError is an alias kept for handlers written against it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Error(c, err)
}

// ParseIntQuery reads an integer query parameter with a fallback.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// GetEmployeeID extracts the acting employee id from request context.
func (h *BaseHandler) GetEmployeeID(c *gin.Context) string {
	return appctx.GetEmployeeID(c.Request.Context())
}

// Created answers 201 with the new entity id.
func (h *BaseHandler) Created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK answers 200 with the payload.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent answers 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success answers 200 with a plain confirmation message.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
