package dto

import (
	"errors"
	"net/http"

	"github.com/portal/backend/internal/domain/shared"
)

// statusByCode maps domain error codes onto HTTP status codes
var statusByCode = map[string]int{
	"NOT_FOUND":                http.StatusNotFound,
	"ALREADY_EXISTS":           http.StatusConflict,
	"INVALID_INPUT":            http.StatusBadRequest,
	"CONCURRENT_MODIFICATION":  http.StatusConflict,
	"INVALID_STATE_TRANSITION": http.StatusConflict,
	"SESSION_EXPIRED":          http.StatusGone,
	"SESSION_INCONSISTENT":     http.StatusConflict,
	"DUPLICATE_REQUEST":        http.StatusConflict,
	"COMMERCE_UNAVAILABLE":     http.StatusBadGateway,
}

// HTTPStatus resolves the status code for an error
func HTTPStatus(err error) int {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := statusByCode[domainErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ErrorCode extracts the stable code from an error
func ErrorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
