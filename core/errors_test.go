package core

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestNewTransportError(t *testing.T) {
	err := NewTransportError(errors.New("tls handshake timeout"), map[string]any{
		"call_id":       "c1",
		"authorization": "Bearer secret",
	})
	if err.Category != goerrors.CategoryExternal || err.Code != http.StatusBadGateway {
		t.Fatalf("unexpected envelope: %+v", err)
	}
	if !strings.Contains(err.Message, "tls handshake timeout") {
		t.Fatalf("expected diagnostic text, got %q", err.Message)
	}
	if err.Metadata["authorization"] != RedactedValue || err.Metadata["call_id"] != "c1" {
		t.Fatalf("unexpected metadata %v", err.Metadata)
	}

	fallback := NewTransportError(nil, nil)
	if !strings.Contains(fallback.Message, defaultTransportErrorMessage) {
		t.Fatalf("expected default diagnostic, got %q", fallback.Message)
	}
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(http.StatusTooManyRequests, "  ", nil)
	if err.Message != defaultAPIErrorDescription || err.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected api error %+v", err)
	}
	if err.Metadata["status_code"] != http.StatusTooManyRequests {
		t.Fatalf("expected status code metadata, got %v", err.Metadata)
	}
	if !IsAPIError(err) || IsTransportError(err) {
		t.Fatalf("unexpected classification for %v", err)
	}
}

func TestReportErrors(t *testing.T) {
	auth := NewReportAuthenticationError("Invalid request", nil)
	if !IsReportAuthenticationError(auth) || auth.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected auth error %+v", auth)
	}
	payload := NewReportPayloadError("Empty payload", nil)
	if !IsReportPayloadError(payload) || payload.Code != http.StatusBadRequest {
		t.Fatalf("unexpected payload error %+v", payload)
	}
	tooLarge := NewReportBodyTooLargeError(1024)
	if !IsReportBodyTooLargeError(tooLarge) || tooLarge.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected body limit error %+v", tooLarge)
	}
	if IsReportPayloadError(tooLarge) || IsReportAuthenticationError(tooLarge) {
		t.Fatalf("body limit error must not classify as a report error: %v", tooLarge)
	}
	if tooLarge.Metadata["body_limit_bytes"] != int64(1024) {
		t.Fatalf("unexpected metadata %v", tooLarge.Metadata)
	}
}

func TestDefaultErrorMapper(t *testing.T) {
	if defaultErrorMapper(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	rich := NewBadInputError("bad", nil)
	if mapped := defaultErrorMapper(rich); mapped != rich {
		t.Fatalf("expected rich errors to pass through")
	}
	mapped := defaultErrorMapper(errors.New("boom"))
	if mapped == nil || mapped.Code == 0 || mapped.TextCode == "" {
		t.Fatalf("expected envelope for plain error, got %+v", mapped)
	}
}

func TestErrorTextCodeOnPlainErrors(t *testing.T) {
	if ErrorTextCode(nil) != "" || ErrorTextCode(errors.New("x")) != "" {
		t.Fatalf("expected empty text code for non gateway errors")
	}
	if _, _, ok := APIErrorDetails(errors.New("x")); ok {
		t.Fatalf("expected no api details for plain error")
	}
}
