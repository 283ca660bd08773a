// Package handlers implements the HTTP handlers for the v1 API.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
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

// ParseID parses a uuid path or query value.
func (h *BaseHandler) ParseID(c *gin.Context, value string) (id.ID, bool) {
	parsed, err := id.Parse(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id: "+value))
		return id.Nil(), false
	}
	return parsed, true
}

// ParseDayQuery parses a YYYY-MM-DD query parameter, defaulting to today.
func (h *BaseHandler) ParseDayQuery(c *gin.Context, key string) (time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return types.Today(), true
	}
	day, err := types.ParseDay(val)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date, want YYYY-MM-DD: "+val))
		return time.Time{}, false
	}
	return day, true
}

// ParseDay parses a YYYY-MM-DD body value, defaulting to today when empty.
func (h *BaseHandler) ParseDay(c *gin.Context, value string) (time.Time, bool) {
	if value == "" {
		return types.Today(), true
	}
	day, err := types.ParseDay(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date, want YYYY-MM-DD: "+value))
		return time.Time{}, false
	}
	return day, true
}

// ParseRangeQuery parses the from/to query pair. Both are required.
func (h *BaseHandler) ParseRangeQuery(c *gin.Context) (from, to time.Time, ok bool) {
	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, apperror.NewValidation("from and to query parameters are required (YYYY-MM-DD)"))
		return time.Time{}, time.Time{}, false
	}
	from, err := types.ParseDay(q.From)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid from date: "+q.From))
		return time.Time{}, time.Time{}, false
	}
	to, err = types.ParseDay(q.To)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid to date: "+q.To))
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		h.Error(c, apperror.NewValidation("to must not be before from"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// Created sends 201 response with ID.
func (h *BaseHandler) Created(c *gin.Context, entityID string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: entityID})
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
