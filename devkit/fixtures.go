package devkit

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
)

const (
	SampleReportTimestamp int64 = 1733663990
	SampleReportPayload         = `{"request_id":"923583492968596","phone_number":"1999123456726","request_cost":0,"delivery_status":{"status":"revoked","updated_at":1733663990},"verification_status":{"status":"expired","updated_at":1733663989}}`
)

// SignReport signs body the way the gateway signs delivery reports.
func SignReport(token string, timestamp int64, body []byte) string {
	key := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, key[:])
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10) + "\n"))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func SignedReportHeaders(token string, timestamp int64, body []byte) map[string]string {
	return map[string]string{
		"X-Request-Timestamp": strconv.FormatInt(timestamp, 10),
		"X-Request-Signature": SignReport(token, timestamp, body),
	}
}

// NewSignedReportRequest builds an inbound report request for handler tests.
func NewSignedReportRequest(token string, timestamp int64, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/telegram/report", bytes.NewReader(body))
	for key, value := range SignedReportHeaders(token, timestamp, body) {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}
