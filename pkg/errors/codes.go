package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeCacheError         ErrorCode = "COMMON_007"
	ErrCodeExternalService    ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Prescription Analysis Error Codes
const (
	ErrCodeNoMedicationsFound ErrorCode = "RX_001"
	ErrCodeExtractionFailed   ErrorCode = "RX_002"
	ErrCodeInvalidPatient     ErrorCode = "RX_003"
	ErrCodeTextTooLong        ErrorCode = "RX_004"
	ErrCodeSafetyCheckFailed  ErrorCode = "RX_005"
	ErrCodeAlternativeLookup  ErrorCode = "RX_006"
)

// Terminology Service Error Codes
const (
	ErrCodeTerminologyUnavailable ErrorCode = "EXT_001"
	ErrCodeTerminologyBadRequest  ErrorCode = "EXT_002"
	ErrCodeTerminologyParseError  ErrorCode = "EXT_003"
	ErrCodeInteractionLookup      ErrorCode = "EXT_004"
)

// AI / Entity Tagger Error Codes
const (
	ErrCodeTaggerNotAvailable ErrorCode = "AI_001"
	ErrCodeTaggerFailed       ErrorCode = "AI_002"
	ErrCodeTaggerInputInvalid ErrorCode = "AI_003"
)

// OCR Error Codes
const (
	ErrCodeOCRNotAvailable  ErrorCode = "OCR_001"
	ErrCodeOCRFailed        ErrorCode = "OCR_002"
	ErrCodeOCRInvalidImage  ErrorCode = "OCR_003"
	ErrCodeOCRImageTooLarge ErrorCode = "OCR_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeNoMedicationsFound: http.StatusBadRequest,
	ErrCodeExtractionFailed:   http.StatusInternalServerError,
	ErrCodeInvalidPatient:     http.StatusBadRequest,
	ErrCodeTextTooLong:        http.StatusRequestEntityTooLarge,
	ErrCodeSafetyCheckFailed:  http.StatusInternalServerError,
	ErrCodeAlternativeLookup:  http.StatusInternalServerError,

	ErrCodeTerminologyUnavailable: http.StatusServiceUnavailable,
	ErrCodeTerminologyBadRequest:  http.StatusBadGateway,
	ErrCodeTerminologyParseError:  http.StatusBadGateway,
	ErrCodeInteractionLookup:      http.StatusBadGateway,

	ErrCodeTaggerNotAvailable: http.StatusServiceUnavailable,
	ErrCodeTaggerFailed:       http.StatusInternalServerError,
	ErrCodeTaggerInputInvalid: http.StatusBadRequest,

	ErrCodeOCRNotAvailable:  http.StatusServiceUnavailable,
	ErrCodeOCRFailed:        http.StatusInternalServerError,
	ErrCodeOCRInvalidImage:  http.StatusBadRequest,
	ErrCodeOCRImageTooLarge: http.StatusRequestEntityTooLarge,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeServiceUnavailable: "service unavailable",

	ErrCodeNoMedicationsFound: "no medications found in the provided text",
	ErrCodeExtractionFailed:   "medication extraction failed",
	ErrCodeInvalidPatient:     "invalid patient information",
	ErrCodeTextTooLong:        "prescription text exceeds maximum length",
	ErrCodeSafetyCheckFailed:  "dosage safety check failed",
	ErrCodeAlternativeLookup:  "alternative medication lookup failed",

	ErrCodeTerminologyUnavailable: "terminology service unavailable",
	ErrCodeTerminologyBadRequest:  "terminology service rejected the request",
	ErrCodeTerminologyParseError:  "failed to parse terminology service response",
	ErrCodeInteractionLookup:      "drug interaction lookup failed",

	ErrCodeTaggerNotAvailable: "entity tagger not available",
	ErrCodeTaggerFailed:       "entity tagging failed",
	ErrCodeTaggerInputInvalid: "invalid input for entity tagger",

	ErrCodeOCRNotAvailable:  "no OCR backend available",
	ErrCodeOCRFailed:        "OCR extraction failed",
	ErrCodeOCRInvalidImage:  "invalid image data",
	ErrCodeOCRImageTooLarge: "image exceeds maximum size",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
