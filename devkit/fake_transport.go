package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/goliatone/go-telegram-gateway/core"
)

type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// OK scripts a successful envelope wrapping result.
func OK(result any) TransportScript {
	body, err := json.Marshal(map[string]any{"ok": true, "result": result})
	if err != nil {
		return TransportScript{Err: fmt.Errorf("devkit: encode result: %w", err)}
	}
	return TransportScript{Response: core.TransportResponse{StatusCode: http.StatusOK, Body: body}}
}

// Failure scripts an ok=false envelope with the given status and description.
func Failure(statusCode int, description string) TransportScript {
	body, _ := json.Marshal(map[string]any{"ok": false, "error": description})
	return TransportScript{Response: core.TransportResponse{StatusCode: statusCode, Body: body}}
}

// Unreachable scripts a call that never obtains an HTTP status.
func Unreachable(err error) TransportScript {
	if err == nil {
		err = fmt.Errorf("devkit: connection refused")
	}
	return TransportScript{Err: err}
}

// FakeTransportAdapter replays scripts in order and repeats the last one once
// the script is exhausted.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	scripts  []TransportScript
	requests []core.TransportRequest
}

func NewFakeTransportAdapter(scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{scripts: append([]TransportScript(nil), scripts...)}
}

func (a *FakeTransportAdapter) Kind() string {
	return "fake"
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))
	index := len(a.requests) - 1
	if index < len(a.scripts) {
		script := a.scripts[index]
		return cloneTransportResponse(script.Response), script.Err
	}
	if len(a.scripts) > 0 {
		last := a.scripts[len(a.scripts)-1]
		return cloneTransportResponse(last.Response), last.Err
	}
	return core.TransportResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
		Body:       []byte(`{"ok":true,"result":{}}`),
		Metadata:   map[string]any{},
	}, nil
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// LastBody decodes the JSON body of the most recent request.
func (a *FakeTransportAdapter) LastBody() (map[string]any, error) {
	requests := a.Requests()
	if len(requests) == 0 {
		return nil, fmt.Errorf("devkit: no request captured")
	}
	var body map[string]any
	if err := json.Unmarshal(requests[len(requests)-1].Body, &body); err != nil {
		return nil, fmt.Errorf("devkit: decode request body: %w", err)
	}
	return body, nil
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:   in.Method,
		URL:      in.URL,
		Headers:  map[string]string{},
		Body:     append([]byte(nil), in.Body...),
		Metadata: map[string]any{},
		Timeout:  in.Timeout,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)
