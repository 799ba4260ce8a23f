// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Custom httpurl validator for redirect destinations and goal targets
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type CreateLinkRequest struct {
//	    Name           string `validate:"omitempty,max=200"`
//	    DestinationURL string `validate:"required,httpurl"`
//	    Status         string `validate:"omitempty,oneof=active paused archived"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req CreateLinkRequest
//	    if err := json.Decode(r.Body, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - httpurl: Absolute http or https URL with a host
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// Collection validations:
//   - dive: Apply the following tags to each element
//
// # Custom Validators
//
// httpurl exists because the built-in url tag accepts any parseable
// URI, including javascript: and data: schemes. Redirect destinations
// and goal target URLs must never pass those through, so httpurl
// requires an http or https scheme and a non-empty host:
//
//	https://example.com/page -> valid
//	http://example.com       -> valid
//	javascript:alert(1)      -> invalid
//	example.com/page         -> invalid (no scheme)
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "100" for max=100)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the application format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "DestinationURL must be a valid http or https URL",
//	    "details": {"field": "DestinationURL", "tag": "httpurl", "value": "ftp://x"}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "DestinationURL: required; Status: must be one of: active paused archived",
//	    "details": {
//	        "fields": [
//	            {"field": "DestinationURL", "tag": "required", "message": "..."},
//	            {"field": "Status", "tag": "oneof", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "DestinationURL is required"
//	httpurl    -> "DestinationURL must be a valid http or https URL"
//	min=3      -> "Name must be at least 3 characters"
//	max=200    -> "Name must be at most 200 characters"
//	gte=1      -> "Limit must be greater than or equal to 1"
//	lte=100    -> "Limit must be less than or equal to 100"
//	oneof=a b  -> "Status must be one of: a b"
//
// # Struct Tag Examples
//
// Bulk action validation:
//
//	type BulkActionRequest struct {
//	    Action string  `validate:"required,oneof=delete update download_zip"`
//	    IDs    []int64 `validate:"required,min=1,dive,min=1"`
//	    Format string  `validate:"omitempty,oneof=png svg"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
