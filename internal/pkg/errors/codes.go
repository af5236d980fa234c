package errors

import (
	"fmt"
	"net/http"
)

const CodeDataFormat = "DATA_FORMAT_ERROR"

var (
	ErrDatasetNotLoaded = New(
		"DATASET_NOT_LOADED",
		"Survey dataset is not loaded",
		http.StatusServiceUnavailable,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInvalidDateRange = New(
		"INVALID_DATE_RANGE",
		"Invalid date range: date_from must not be after date_to",
		http.StatusBadRequest,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// NewDataFormat builds the fatal load-time error for a malformed source
// relation. There is no partial-load mode: one bad column or value fails
// the whole build.
func NewDataFormat(source, detail string) *AppError {
	e := New(
		CodeDataFormat,
		fmt.Sprintf("Malformed source relation %q: %s", source, detail),
		http.StatusUnprocessableEntity,
	)
	e.Details["source"] = source
	return e
}
