// Package dto defines the HTTP request and response shapes.
package dto

// IDResponse returns a created entity id.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success envelope.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DateRangeQuery is the common from/to query pair (YYYY-MM-DD).
type DateRangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
