package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func decodeRequestBody(t *testing.T, req TransportRequest) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestClient_SendVerificationMessage(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusOK, `{"ok":true,"result":{
		"request_id":"req_1","phone_number":"+391234567890","request_cost":0.01,
		"remaining_balance":9.99,
		"delivery_status":{"status":"sent","updated_at":1733663990}}}`)
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	status, err := client.SendVerificationMessage(context.Background(), "+391234567890", SendVerificationMessageParameters{
		Code: "1234",
		TTL:  60,
	})
	if err != nil {
		t.Fatalf("send verification message: %v", err)
	}
	if status.RequestID != "req_1" || status.RequestCost != 0.01 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.RemainingBalance == nil || *status.RemainingBalance != 9.99 {
		t.Fatalf("expected remaining balance, got %v", status.RemainingBalance)
	}
	if status.DeliveryStatus == nil || status.DeliveryStatus.Status != DeliveryStateSent {
		t.Fatalf("expected sent delivery status, got %+v", status.DeliveryStatus)
	}
	if status.VerificationStatus != nil {
		t.Fatalf("expected absent verification status")
	}

	req := transport.lastRequest()
	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %q", req.Method)
	}
	if req.URL != DefaultBaseURL+MethodSendVerificationMessage {
		t.Fatalf("unexpected url %q", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer test-token" {
		t.Fatalf("unexpected authorization header %q", req.Headers["Authorization"])
	}
	if req.Headers["Content-Type"] != "application/json" {
		t.Fatalf("unexpected content type %q", req.Headers["Content-Type"])
	}
	if req.Headers["Content-Length"] != strconv.Itoa(len(req.Body)) {
		t.Fatalf("unexpected content length %q for %d bytes", req.Headers["Content-Length"], len(req.Body))
	}
	body := decodeRequestBody(t, req)
	if body["phone_number"] != "+391234567890" || body["code"] != "1234" || body["ttl"] != float64(60) {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["code_length"]; ok {
		t.Fatalf("expected unset code_length to be omitted, got %v", body)
	}
	if req.Metadata["call_id"] != "call_1" {
		t.Fatalf("expected call id metadata, got %v", req.Metadata)
	}
}

func TestClient_SendVerificationMessageRejectsInvalidParameters(t *testing.T) {
	transport := &scriptedTransport{}
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cases := []SendVerificationMessageParameters{
		{Code: "12a4"},
		{Code: "123"},
		{CodeLength: 9},
		{TTL: 10},
		{CallbackURL: "http://example.com/hook"},
		{Payload: strings.Repeat("p", MaxPayloadBytes+1)},
	}
	for _, params := range cases {
		_, err := client.SendVerificationMessage(context.Background(), "+391234567890", params)
		if !IsBadInputError(err) {
			t.Fatalf("expected bad input error for %+v, got %v", params, err)
		}
	}
	if _, err := client.SendVerificationMessage(context.Background(), "  ", SendVerificationMessageParameters{}); !IsBadInputError(err) {
		t.Fatalf("expected blank phone number to be rejected, got %v", err)
	}
	if len(transport.requests) != 0 {
		t.Fatalf("expected no transport calls, got %d", len(transport.requests))
	}
}

func TestClient_APIErrorCarriesStatusAndDescription(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusBadRequest, `{"ok":false,"error":"PHONE_NUMBER_INVALID"}`)
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CheckSendAbility(context.Background(), "+000")
	if !IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}
	status, description, ok := APIErrorDetails(err)
	if !ok || status != http.StatusBadRequest || description != "PHONE_NUMBER_INVALID" {
		t.Fatalf("unexpected api error details: %d %q %v", status, description, ok)
	}
}

func TestClient_APIErrorWithoutEnvelope(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusBadGateway, `<html>bad gateway</html>`)
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CheckVerificationStatus(context.Background(), "req_1", "")
	status, description, ok := APIErrorDetails(err)
	if !ok || status != http.StatusBadGateway || description != defaultAPIErrorDescription {
		t.Fatalf("unexpected api error details: %d %q %v", status, description, ok)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	transport := (&scriptedTransport{}).fail(errors.New("dial tcp: connection refused"))
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CheckSendAbility(context.Background(), "+391234567890")
	if !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport diagnostic in error, got %q", err.Error())
	}
	if IsAPIError(err) {
		t.Fatalf("transport errors must not be api errors")
	}
	if info := client.LastTransportInfo(); info.StatusCode != 0 || info.CallID != "call_1" {
		t.Fatalf("unexpected transport info after failure: %+v", info)
	}
}

func TestClient_ResultThatIsNotAnObject(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusOK, `{"ok":true,"result":true}`)
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CheckSendAbility(context.Background(), "+391234567890"); !IsResponseDecodeError(err) {
		t.Fatalf("expected response decode error, got %v", err)
	}
}

func TestClient_CheckVerificationStatusForwardsOnlyNumericCodes(t *testing.T) {
	transport := (&scriptedTransport{}).
		reply(http.StatusOK, `{"ok":true,"result":{"request_id":"req_1","verification_status":{"status":"code_valid","updated_at":1,"code_entered":"1234"}}}`).
		reply(http.StatusOK, `{"ok":true,"result":{"request_id":"req_1"}}`)
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	status, err := client.CheckVerificationStatus(context.Background(), "req_1", "1234")
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if body := decodeRequestBody(t, transport.lastRequest()); body["code"] != "1234" {
		t.Fatalf("expected numeric code to be forwarded, got %v", body)
	}
	if status.VerificationStatus == nil || status.VerificationStatus.Status != VerificationStateCodeValid {
		t.Fatalf("unexpected verification status %+v", status.VerificationStatus)
	}
	if status.VerificationStatus.CodeEntered == nil || *status.VerificationStatus.CodeEntered != "1234" {
		t.Fatalf("expected code_entered to be decoded")
	}

	if _, err := client.CheckVerificationStatus(context.Background(), "req_1", "12ab"); err != nil {
		t.Fatalf("check status: %v", err)
	}
	body := decodeRequestBody(t, transport.lastRequest())
	if _, ok := body["code"]; ok {
		t.Fatalf("expected non numeric code to be omitted, got %v", body)
	}
	if body["request_id"] != "req_1" {
		t.Fatalf("expected request id in body, got %v", body)
	}
}

func TestClient_RevokeVerificationMessage(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{body: `{"ok":true,"result":true}`, want: true},
		{body: `{"ok":true,"result":false}`, want: false},
		{body: `{"ok":true,"result":1}`, want: true},
		{body: `{"ok":true,"result":null}`, want: false},
		{body: `{"ok":true}`, want: false},
	}
	for _, tc := range cases {
		transport := (&scriptedTransport{}).reply(http.StatusOK, tc.body)
		client, err := newTestClient(transport)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		got, err := client.RevokeVerificationMessage(context.Background(), "req_1")
		if err != nil {
			t.Fatalf("revoke %s: %v", tc.body, err)
		}
		if got != tc.want {
			t.Fatalf("revoke %s: expected %v, got %v", tc.body, tc.want, got)
		}
	}
}

func TestClient_RevokeRequiresRequestID(t *testing.T) {
	client, err := newTestClient(&scriptedTransport{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.RevokeVerificationMessage(context.Background(), ""); !IsBadInputError(err) {
		t.Fatalf("expected bad input error, got %v", err)
	}
}

func TestClient_TransportOptionsAndDiagnostics(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusOK, `{"ok":true,"result":{"request_id":"req_1"}}`)
	transport.responses[0].res.Metadata = map[string]any{"effective_url": "https://edge.example/checkSendAbility"}
	client, err := newTestClient(transport)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if info := client.LastTransportInfo(); info.CallID != "" {
		t.Fatalf("expected zero transport info before any call, got %+v", info)
	}

	client.SetTransportHeader("X-Trace", "abc")
	client.SetTransportHeader("Authorization", "Bearer forged")
	options := client.TransportOptions()
	options.UserAgent = "gateway-test/1.0"
	options.Headers["X-Trace"] = "abc"
	client.SetTransportOptions(options)

	if _, err := client.CheckSendAbility(context.Background(), "+391234567890"); err != nil {
		t.Fatalf("check send ability: %v", err)
	}
	req := transport.lastRequest()
	if req.Headers["X-Trace"] != "abc" || req.Headers["User-Agent"] != "gateway-test/1.0" {
		t.Fatalf("expected custom headers, got %v", req.Headers)
	}
	if req.Headers["Authorization"] != "Bearer test-token" {
		t.Fatalf("expected client authorization to win, got %q", req.Headers["Authorization"])
	}
	if req.Timeout != DefaultTransportTimeout {
		t.Fatalf("expected default timeout, got %s", req.Timeout)
	}

	info := client.LastTransportInfo()
	if info.StatusCode != http.StatusOK || info.Operation != MethodCheckSendAbility {
		t.Fatalf("unexpected transport info %+v", info)
	}
	if info.EffectiveURL != "https://edge.example/checkSendAbility" {
		t.Fatalf("expected effective url from transport metadata, got %q", info.EffectiveURL)
	}
	if last := client.LastTransportOptions(); last.UserAgent != "gateway-test/1.0" {
		t.Fatalf("unexpected last transport options %+v", last)
	}

	client.SetTransportHeader("X-Trace", "")
	if _, ok := client.TransportOptions().Headers["X-Trace"]; ok {
		t.Fatalf("expected empty value to remove header")
	}
}

func TestClient_BaseURLOverride(t *testing.T) {
	transport := (&scriptedTransport{}).reply(http.StatusOK, `{"ok":true,"result":{}}`)
	client, err := NewClient(Config{Token: "t", BaseURL: "https://gateway.test/api"}, WithTransport(transport))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CheckSendAbility(context.Background(), "+391234567890"); err != nil {
		t.Fatalf("check send ability: %v", err)
	}
	if got := transport.lastRequest().URL; got != "https://gateway.test/api/checkSendAbility" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestNewClient_RequiresTokenAndTransport(t *testing.T) {
	if _, err := NewClient(Config{}, WithTransport(&scriptedTransport{})); !IsBadInputError(err) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if _, err := NewClient(Config{Token: "t"}); ErrorTextCode(err) != ErrorInternal {
		t.Fatalf("expected missing transport error, got %v", err)
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		``:        false,
		`null`:    false,
		`true`:    true,
		`0`:       false,
		`2`:       true,
		`""`:      false,
		`"0"`:     false,
		`"yes"`:   true,
		`[]`:      false,
		`[1]`:     true,
		`{}`:      false,
		`{"a":1}`: true,
	}
	for raw, want := range cases {
		if got := truthy(json.RawMessage(raw)); got != want {
			t.Fatalf("truthy(%q): expected %v, got %v", raw, want, got)
		}
	}
}
