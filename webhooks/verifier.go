package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-telegram-gateway/core"
)

const (
	HeaderRequestTimestamp = "X-Request-Timestamp"
	HeaderRequestSignature = "X-Request-Signature"

	DefaultMaxReportBodyBytes int64 = 1 << 20
)

type ReportVerifierConfig struct {
	Token string
	// ReplayWindow rejects reports whose timestamp is further than the window
	// from Now. Zero disables the check.
	ReplayWindow time.Duration
	// Ledger, when set, rejects a signature seen before.
	Ledger core.ReplayLedger
	Now    func() time.Time
}

// ReportVerifier checks the origin and integrity of delivery reports. It holds
// no mutable state and is safe for concurrent use.
type ReportVerifier struct {
	key          []byte
	replayWindow time.Duration
	ledger       core.ReplayLedger
	now          func() time.Time
}

func NewReportVerifier(cfg ReportVerifierConfig) (*ReportVerifier, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, core.NewBadInputError("webhooks: api token is required", nil)
	}
	if cfg.ReplayWindow < 0 {
		return nil, core.NewBadInputError("webhooks: replay window must not be negative", nil)
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	key := sha256.Sum256([]byte(token))
	return &ReportVerifier{
		key:          key[:],
		replayWindow: cfg.ReplayWindow,
		ledger:       cfg.Ledger,
		now:          now,
	}, nil
}

// Signature returns the lowercase hex HMAC-SHA256 of timestamp + "\n" + body,
// keyed with the raw SHA-256 digest of the token.
func (v *ReportVerifier) Signature(timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	_, _ = mac.Write([]byte{'\n'})
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// RequestTimestamp returns the Unix time at which the gateway sent the report.
func (v *ReportVerifier) RequestTimestamp(headers map[string]string) (int64, error) {
	raw := headerValue(headers, HeaderRequestTimestamp)
	if raw == "" {
		return 0, core.NewReportAuthenticationError("webhooks: empty request timestamp", nil)
	}
	timestamp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.NewReportAuthenticationError("webhooks: invalid request timestamp", map[string]any{
			"timestamp": raw,
		})
	}
	return timestamp, nil
}

// CheckRequest reports whether the signature header matches the body. Missing
// or malformed headers are returned as authentication errors before any HMAC
// is computed.
func (v *ReportVerifier) CheckRequest(headers map[string]string, body []byte) (bool, error) {
	_, valid, err := v.checkRequest(headers, body)
	return valid, err
}

func (v *ReportVerifier) checkRequest(headers map[string]string, body []byte) (int64, bool, error) {
	if v == nil || len(v.key) == 0 {
		return 0, false, core.NewInternalError("webhooks: report verifier is not configured", nil)
	}
	timestamp, err := v.RequestTimestamp(headers)
	if err != nil {
		return 0, false, err
	}
	signature := headerValue(headers, HeaderRequestSignature)
	if signature == "" {
		return 0, false, core.NewReportAuthenticationError("webhooks: empty request signature", nil)
	}
	expected := v.Signature(timestamp, body)
	return timestamp, subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1, nil
}

// Verify authenticates an inbound report and applies the optional replay
// window and ledger.
func (v *ReportVerifier) Verify(ctx context.Context, req core.InboundRequest) error {
	timestamp, valid, err := v.checkRequest(req.Headers, req.Body)
	if err != nil {
		return err
	}
	if !valid {
		return core.NewReportAuthenticationError("webhooks: invalid request", nil)
	}
	if v.replayWindow > 0 {
		delta := v.now().Sub(time.Unix(timestamp, 0))
		if delta < 0 {
			delta = -delta
		}
		if delta > v.replayWindow {
			return core.NewReportAuthenticationError("webhooks: request timestamp outside replay window", map[string]any{
				"timestamp": timestamp,
			})
		}
	}
	if v.ledger != nil {
		ttl := 2 * v.replayWindow
		if ttl <= 0 {
			ttl = core.DefaultReplayLedgerTTL
		}
		claimed, err := v.ledger.Claim(ctx, replayKey(req.Headers), ttl)
		if err != nil {
			return core.NewInternalError("webhooks: replay ledger claim failed: "+err.Error(), nil)
		}
		if !claimed {
			return core.NewReportAuthenticationError("webhooks: replayed request", map[string]any{
				"timestamp": timestamp,
			})
		}
	}
	return nil
}

// Release gives back the ledger claim taken by Verify, so the gateway can
// deliver the same report again. Without a ledger it does nothing.
func (v *ReportVerifier) Release(ctx context.Context, req core.InboundRequest) error {
	if v == nil || v.ledger == nil {
		return nil
	}
	if err := v.ledger.Release(ctx, replayKey(req.Headers)); err != nil {
		return core.NewInternalError("webhooks: replay ledger release failed: "+err.Error(), nil)
	}
	return nil
}

func replayKey(headers map[string]string) string {
	return "report:" + strings.ToLower(headerValue(headers, HeaderRequestSignature))
}

// ParseReport decodes an authenticated report body. An empty body, a body that
// is not a JSON object and an empty object are all rejected.
func (v *ReportVerifier) ParseReport(body []byte) (core.RequestStatus, error) {
	return ParseReport(body)
}

func ParseReport(body []byte) (core.RequestStatus, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return core.RequestStatus{}, core.NewReportPayloadError("webhooks: empty payload", nil)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		return core.RequestStatus{}, core.NewReportPayloadError("webhooks: invalid payload", nil)
	}
	status, err := core.DecodeRequestStatus(trimmed)
	if err != nil {
		return core.RequestStatus{}, core.NewReportPayloadError(fmt.Sprintf("webhooks: invalid payload: %v", err), nil)
	}
	return status, nil
}

// Receive reads, authenticates and parses a report from an HTTP request.
func (v *ReportVerifier) Receive(r *http.Request) (core.RequestStatus, error) {
	if r == nil {
		return core.RequestStatus{}, core.NewBadInputError("webhooks: request is required", nil)
	}
	req, err := InboundFromHTTP(r, DefaultMaxReportBodyBytes)
	if err != nil {
		return core.RequestStatus{}, err
	}
	if err := v.Verify(r.Context(), req); err != nil {
		return core.RequestStatus{}, err
	}
	return ParseReport(req.Body)
}

// InboundFromHTTP copies headers and at most maxBodyBytes of body from r. The
// body is not authenticated yet, so failures are bad input rather than report
// payload errors.
func InboundFromHTTP(r *http.Request, maxBodyBytes int64) (core.InboundRequest, error) {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxReportBodyBytes
	}
	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			return core.InboundRequest{}, core.NewBadInputError("webhooks: read request body: "+err.Error(), nil)
		}
		if int64(len(data)) > maxBodyBytes {
			return core.InboundRequest{}, core.NewReportBodyTooLargeError(maxBodyBytes)
		}
		body = data
	}
	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return core.InboundRequest{
		Headers: headers,
		Body:    body,
		Metadata: map[string]any{
			"method":      r.Method,
			"remote_addr": r.RemoteAddr,
		},
	}, nil
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	if value, ok := headers[key]; ok {
		return strings.TrimSpace(value)
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
