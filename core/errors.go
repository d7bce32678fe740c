package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput                = "GATEWAY_BAD_INPUT"
	ErrorTransportFailure        = "GATEWAY_TRANSPORT_FAILURE"
	ErrorAPI                     = "GATEWAY_API_ERROR"
	ErrorReportUnauthenticated   = "GATEWAY_REPORT_UNAUTHENTICATED"
	ErrorReportBadPayload        = "GATEWAY_REPORT_BAD_PAYLOAD"
	ErrorReportBodyTooLarge      = "GATEWAY_REPORT_BODY_TOO_LARGE"
	ErrorResponseDecode          = "GATEWAY_RESPONSE_DECODE"
	ErrorInternal                = "GATEWAY_INTERNAL_ERROR"
	defaultAPIErrorDescription   = "unknown gateway error"
	defaultTransportErrorMessage = "unknown transport error"
)

// NewTransportError reports a call that failed before any HTTP status was
// obtained. The transport diagnostic text is kept in the message.
func NewTransportError(source error, metadata map[string]any) *goerrors.Error {
	diagnostic := defaultTransportErrorMessage
	if source != nil && strings.TrimSpace(source.Error()) != "" {
		diagnostic = strings.TrimSpace(source.Error())
	}
	message := "core: transport failure: " + diagnostic
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(ErrorTransportFailure)
	return withMetadata(err, metadata)
}

// NewAPIError reports a response whose envelope carried ok=false. Code holds
// the HTTP status of the response.
func NewAPIError(statusCode int, description string, metadata map[string]any) *goerrors.Error {
	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultAPIErrorDescription
	}
	fields := cloneFields(metadata)
	fields["status_code"] = statusCode
	fields["description"] = description
	err := goerrors.New(description, goerrors.CategoryExternal).
		WithCode(statusCode).
		WithTextCode(ErrorAPI)
	return withMetadata(err, fields)
}

// NewResponseDecodeError reports an ok=true envelope whose result could not be
// decoded into the declared response type.
func NewResponseDecodeError(source error, metadata map[string]any) *goerrors.Error {
	message := "core: decode response result"
	if source != nil {
		message += ": " + strings.TrimSpace(source.Error())
	}
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(ErrorResponseDecode)
	return withMetadata(err, metadata)
}

func NewReportAuthenticationError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorReportUnauthenticated)
	return withMetadata(err, metadata)
}

func NewReportPayloadError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorReportBadPayload)
	return withMetadata(err, metadata)
}

// NewReportBodyTooLargeError reports an inbound body over the read limit. It
// is raised before authentication, so it never claims the body is a report.
func NewReportBodyTooLargeError(limit int64) *goerrors.Error {
	err := goerrors.New(fmt.Sprintf("webhooks: request body exceeds limit of %d bytes", limit), goerrors.CategoryBadInput).
		WithCode(http.StatusRequestEntityTooLarge).
		WithTextCode(ErrorReportBodyTooLarge)
	return withMetadata(err, map[string]any{"body_limit_bytes": limit})
}

func NewBadInputError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
	return withMetadata(err, metadata)
}

func NewInternalError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
	return withMetadata(err, metadata)
}

func wrapValidationError(source error, message string) *goerrors.Error {
	if source == nil {
		return nil
	}
	return goerrors.Wrap(source, goerrors.CategoryValidation, fmt.Sprintf("%s: %v", message, source)).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
}

func withMetadata(err *goerrors.Error, metadata map[string]any) *goerrors.Error {
	if err == nil || len(metadata) == 0 {
		return err
	}
	return err.WithMetadata(RedactSensitiveMap(metadata))
}

// ErrorTextCode returns the stable text code of a gateway error, or "".
func ErrorTextCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return ""
	}
	return rich.TextCode
}

func IsTransportError(err error) bool {
	return ErrorTextCode(err) == ErrorTransportFailure
}

func IsAPIError(err error) bool {
	return ErrorTextCode(err) == ErrorAPI
}

func IsReportAuthenticationError(err error) bool {
	return ErrorTextCode(err) == ErrorReportUnauthenticated
}

func IsReportPayloadError(err error) bool {
	return ErrorTextCode(err) == ErrorReportBadPayload
}

func IsReportBodyTooLargeError(err error) bool {
	return ErrorTextCode(err) == ErrorReportBodyTooLarge
}

func IsBadInputError(err error) bool {
	return ErrorTextCode(err) == ErrorBadInput
}

func IsResponseDecodeError(err error) bool {
	return ErrorTextCode(err) == ErrorResponseDecode
}

// APIErrorDetails extracts the HTTP status and the remote error description
// carried by an API error.
func APIErrorDetails(err error) (int, string, bool) {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) || rich == nil || rich.TextCode != ErrorAPI {
		return 0, "", false
	}
	return rich.Code, rich.Message, true
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatusForCategory(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryAuth:
		return ErrorReportUnauthenticated
	case goerrors.CategoryExternal:
		return ErrorTransportFailure
	default:
		return ErrorInternal
	}
}

func httpStatusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
