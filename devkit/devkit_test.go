package devkit

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/goliatone/go-telegram-gateway/core"
	"github.com/goliatone/go-telegram-gateway/webhooks"
)

func TestFakeTransportAdapter_ScriptsAndCapturesRequests(t *testing.T) {
	adapter := NewFakeTransportAdapter(
		Failure(http.StatusTooManyRequests, "FLOOD_WAIT"),
		OK(map[string]any{"request_id": "req_1"}),
	)

	first, err := adapter.Do(context.Background(), core.TransportRequest{URL: "https://gateway.test/checkSendAbility", Body: []byte(`{"a":1}`)})
	if err != nil {
		t.Fatalf("first fake call: %v", err)
	}
	if first.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected scripted 429, got %d", first.StatusCode)
	}
	second, err := adapter.Do(context.Background(), core.TransportRequest{URL: "https://gateway.test/checkSendAbility", Body: []byte(`{"a":2}`)})
	if err != nil || second.StatusCode != http.StatusOK {
		t.Fatalf("unexpected second response %d %v", second.StatusCode, err)
	}
	third, _ := adapter.Do(context.Background(), core.TransportRequest{Body: []byte(`{"a":3}`)})
	if third.StatusCode != http.StatusOK {
		t.Fatalf("expected last script to repeat, got %d", third.StatusCode)
	}

	if got := len(adapter.Requests()); got != 3 {
		t.Fatalf("expected three captured requests, got %d", got)
	}
	body, err := adapter.LastBody()
	if err != nil || body["a"] != float64(3) {
		t.Fatalf("unexpected last body %v %v", body, err)
	}
}

func TestFakeTransportAdapter_Unreachable(t *testing.T) {
	adapter := NewFakeTransportAdapter(Unreachable(errors.New("no route to host")))
	if _, err := adapter.Do(context.Background(), core.TransportRequest{}); err == nil {
		t.Fatalf("expected scripted error")
	}
}

func TestSignedReportFixturesVerify(t *testing.T) {
	verifier, err := webhooks.NewReportVerifier(webhooks.ReportVerifierConfig{Token: "fixture-token"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	status, err := verifier.Receive(NewSignedReportRequest("fixture-token", SampleReportTimestamp, []byte(SampleReportPayload)))
	if err != nil {
		t.Fatalf("receive signed fixture: %v", err)
	}
	if status.RequestID != "923583492968596" {
		t.Fatalf("unexpected status %+v", status)
	}
	if SignReport("fixture-token", SampleReportTimestamp, []byte(SampleReportPayload)) !=
		verifier.Signature(SampleReportTimestamp, []byte(SampleReportPayload)) {
		t.Fatalf("expected fixture signature to match verifier signature")
	}
}
