// Package services holds the query logic behind the HTTP handlers: it
// resolves days through the catalog and reads cells from matrix files.
package services

import (
	"errors"
	"fmt"

	"github.com/soltixdb/correlator/internal/catalog"
)

// Error codes returned by DayService
const (
	CodeDayNotFound       = "DAY_NOT_FOUND"
	CodeInvalidCell       = "INVALID_CELL"
	CodeInvalidWindow     = "INVALID_WINDOW"
	CodeMatrixUnavailable = "MATRIX_UNAVAILABLE"
	CodeCatalogError      = "CATALOG_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// AsServiceError finds the first ServiceError in err's chain
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// catalogError translates a catalog lookup failure for day
func catalogError(day int, err error) *ServiceError {
	if errors.Is(err, catalog.ErrNotFound) {
		return NewServiceErrorWithDetails(CodeDayNotFound,
			fmt.Sprintf("day %d has not been computed", day),
			map[string]interface{}{"day": day})
	}
	return NewServiceError(CodeCatalogError, err.Error())
}
