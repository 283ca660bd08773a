package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFactoryStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidation("bad input"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("product", "p-1"), CodeNotFound, http.StatusNotFound},
		{"invalid state", NewInvalidState("approve", "pending_approval", "in_progress"), CodeInvalidState, http.StatusUnprocessableEntity},
		{"insufficient stock", NewInsufficientStock("p-1", 10, 3), CodeInsufficientStock, http.StatusUnprocessableEntity},
		{"concurrent modification", NewConcurrentModification("ledger entry", "e-1"), CodeConcurrentModification, http.StatusConflict},
		{"unauthorized", NewUnauthorized("bad token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("wrong role"), CodeForbidden, http.StatusForbidden},
		{"conflict", NewConflict("active session exists"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("product", "sku", "SKU-1"), CodeDuplicate, http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestInvalidStateNamesRequiredState(t *testing.T) {
	err := NewInvalidState("approve", "pending_approval", "in_progress")
	if err.Details["required"] != "pending_approval" || err.Details["actual"] != "in_progress" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestUnwrapThroughChain(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("save entry: %w", NewInternal(cause))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Code != CodeInternal {
		t.Errorf("code = %s, want %s", appErr.Code, CodeInternal)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause lost from chain")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	if got := GetHTTPStatus(NewNotFound("session", "s-1")); got != http.StatusNotFound {
		t.Errorf("status = %d, want 404", got)
	}
	if got := GetHTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for plain error", got)
	}
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("row locked")
	err := NewConflict("busy").WithDetail("day", "2026-03-01").WithCause(cause)

	if err.Details["day"] != "2026-03-01" {
		t.Errorf("details = %v", err.Details)
	}
	if !errors.Is(err, cause) {
		t.Error("WithCause not unwrappable")
	}
	if !IsAppError(err) {
		t.Error("IsAppError = false")
	}
}
