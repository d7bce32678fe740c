package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

func hasCounter(counters []capturedCounter, name string, status string) bool {
	for _, counter := range counters {
		if counter.name == name && counter.tags["status"] == status {
			return true
		}
	}
	return false
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type namedLoggerProvider struct {
	logger Logger
	names  []string
}

func (p *namedLoggerProvider) GetLogger(name string) Logger {
	p.names = append(p.names, name)
	return p.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return StaticConfigLoader{Values: l.values}.LoadRaw(context.Background())
}

type scriptedResponse struct {
	res TransportResponse
	err error
}

// scriptedTransport replays responses in order and records every request.
type scriptedTransport struct {
	mu        sync.Mutex
	responses []scriptedResponse
	requests  []TransportRequest
}

func (t *scriptedTransport) Kind() string { return "scripted" }

func (t *scriptedTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if len(t.responses) == 0 {
		return TransportResponse{}, errors.New("scripted transport: no response queued")
	}
	next := t.responses[0]
	t.responses = t.responses[1:]
	return next.res, next.err
}

func (t *scriptedTransport) reply(status int, body string) *scriptedTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = append(t.responses, scriptedResponse{res: TransportResponse{StatusCode: status, Body: []byte(body)}})
	return t
}

func (t *scriptedTransport) fail(err error) *scriptedTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = append(t.responses, scriptedResponse{err: err})
	return t
}

func (t *scriptedTransport) lastRequest() TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return TransportRequest{}
	}
	return t.requests[len(t.requests)-1]
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestClient(transport TransportAdapter, opts ...Option) (*Client, error) {
	base := []Option{
		WithTransport(transport),
		WithIDGenerator(func() string { return "call_1" }),
		WithNow(fixedClock(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))),
	}
	return NewClient(Config{Token: "test-token"}, append(base, opts...)...)
}
