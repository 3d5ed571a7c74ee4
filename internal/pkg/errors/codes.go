package errors

import "net/http"

// Provider resolution
var (
	ErrNoGeoCoordinatesForLocation = New(
		"NO_GEO_COORDINATES_FOR_LOCATION",
		"No geo coordinates found for location",
		http.StatusNotFound,
	)

	ErrUnknownProvider = New(
		"UNKNOWN_PROVIDER",
		"No such provider",
		http.StatusNotFound,
	)

	ErrNoProviderForPostalCode = New(
		"NO_PROVIDER_FOR_POSTAL_CODE",
		"No provider configured for postal code",
		http.StatusNotFound,
	)

	ErrNoProviderAvailable = New(
		"NO_PROVIDER_AVAILABLE",
		"No provider available for target",
		http.StatusNotFound,
	)
)

// Target validation
var (
	ErrMissingPostalCode = New(
		"MISSING_POSTAL_CODE",
		"No postal code specified in address",
		http.StatusBadRequest,
	)

	ErrInvalidPostalCode = New(
		"INVALID_POSTAL_CODE",
		"Postal code is not an integer",
		http.StatusBadRequest,
	)

	ErrUnsupportedTargetType = New(
		"UNSUPPORTED_TARGET_TYPE",
		"Unsupported target type",
		http.StatusInternalServerError,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)
)

var (
	ErrAddressNotFound = New(
		"ADDRESS_NOT_FOUND",
		"Address not found",
		http.StatusNotFound,
	)

	ErrUpstreamError = New(
		"UPSTREAM_ERROR",
		"Upstream provider request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
