package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-telegram-gateway/core"
)

// ReportHandlerFunc receives every authenticated report. A returned error
// makes the receiver answer 500 and releases the replay claim, so the gateway
// may deliver again.
type ReportHandlerFunc func(ctx context.Context, status core.RequestStatus) error

// ReportHandler is an http.Handler for the callback_url endpoint.
type ReportHandler struct {
	Verifier     *ReportVerifier
	Handle       ReportHandlerFunc
	Logger       core.Logger
	Metrics      core.MetricsRecorder
	MaxBodyBytes int64
}

type ReportHandlerOption func(*reportHandlerBuilder)

type reportHandlerBuilder struct {
	name           string
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	maxBodyBytes   int64
}

// WithReportLoggerName sets the name the logger provider is asked for.
func WithReportLoggerName(name string) ReportHandlerOption {
	return func(b *reportHandlerBuilder) {
		b.name = strings.TrimSpace(name)
	}
}

func WithReportLogger(logger core.Logger) ReportHandlerOption {
	return func(b *reportHandlerBuilder) {
		b.logger = logger
	}
}

func WithReportLoggerProvider(provider core.LoggerProvider) ReportHandlerOption {
	return func(b *reportHandlerBuilder) {
		b.loggerProvider = provider
	}
}

func WithReportMetricsRecorder(recorder core.MetricsRecorder) ReportHandlerOption {
	return func(b *reportHandlerBuilder) {
		b.metrics = recorder
	}
}

func WithMaxReportBodyBytes(limit int64) ReportHandlerOption {
	return func(b *reportHandlerBuilder) {
		b.maxBodyBytes = limit
	}
}

func NewReportHandler(verifier *ReportVerifier, handle ReportHandlerFunc, opts ...ReportHandlerOption) *ReportHandler {
	builder := reportHandlerBuilder{
		name:         core.DefaultServiceName,
		metrics:      core.NopMetricsRecorder{},
		maxBodyBytes: DefaultMaxReportBodyBytes,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	if builder.name == "" {
		builder.name = core.DefaultServiceName
	}
	if builder.metrics == nil {
		builder.metrics = core.NopMetricsRecorder{}
	}
	if builder.maxBodyBytes <= 0 {
		builder.maxBodyBytes = DefaultMaxReportBodyBytes
	}

	provider, logger := glog.Resolve(builder.name, builder.loggerProvider, builder.logger)
	if builder.logger == nil && provider != nil {
		if named := provider.GetLogger(builder.name); named != nil {
			logger = named
		}
	}

	return &ReportHandler{
		Verifier:     verifier,
		Handle:       handle,
		Logger:       glog.Ensure(logger),
		Metrics:      builder.metrics,
		MaxBodyBytes: builder.maxBodyBytes,
	}
}

// Process runs verification, parsing and the callback for one report.
func (h *ReportHandler) Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	if h == nil || h.Verifier == nil {
		err := core.NewInternalError("webhooks: report handler requires a verifier", nil)
		return core.InboundResult{StatusCode: http.StatusInternalServerError}, err
	}

	result, status, err := h.process(ctx, req)
	fields := map[string]any{
		"status_code": result.StatusCode,
		"accepted":    result.Accepted,
	}
	if status.RequestID != "" {
		fields["request_id"] = status.RequestID
	}
	if status.DeliveryStatus != nil {
		fields["delivery_status"] = string(status.DeliveryStatus.Status)
	}
	if status.VerificationStatus != nil {
		fields["verification_status"] = string(status.VerificationStatus.Status)
	}
	h.observe(ctx, startedAt, err, fields)
	return result, err
}

func (h *ReportHandler) process(ctx context.Context, req core.InboundRequest) (core.InboundResult, core.RequestStatus, error) {
	if err := h.Verifier.Verify(ctx, req); err != nil {
		return rejected(statusCodeFor(err)), core.RequestStatus{}, err
	}
	status, err := ParseReport(req.Body)
	if err != nil {
		return rejected(http.StatusBadRequest), core.RequestStatus{}, err
	}
	if h.Handle != nil {
		if err := h.Handle(ctx, status); err != nil {
			if releaseErr := h.Verifier.Release(ctx, req); releaseErr != nil {
				err = errors.Join(err, releaseErr)
			}
			return rejected(http.StatusInternalServerError), status, err
		}
	}
	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Metadata:   map[string]any{"request_id": status.RequestID},
	}, status, nil
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeReply(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := InboundFromHTTP(r, h.MaxBodyBytes)
	if err != nil {
		statusCode := http.StatusBadRequest
		if core.IsReportBodyTooLargeError(err) {
			statusCode = http.StatusRequestEntityTooLarge
		}
		h.observe(r.Context(), time.Now(), err, map[string]any{"status_code": statusCode})
		writeReply(w, statusCode, http.StatusText(statusCode))
		return
	}
	result, err := h.Process(r.Context(), req)
	if err != nil {
		writeReply(w, result.StatusCode, http.StatusText(result.StatusCode))
		return
	}
	writeReply(w, http.StatusOK, "")
}

func (h *ReportHandler) observe(ctx context.Context, startedAt time.Time, err error, fields map[string]any) {
	status := "success"
	level := "info"
	message := "report received"
	if err != nil {
		status = "failure"
		level = "warn"
		message = "report rejected"
		fields["error"] = err.Error()
		if code := core.ErrorTextCode(err); code != "" {
			fields["error_code"] = code
		}
		if code, _ := fields["status_code"].(int); code >= http.StatusInternalServerError {
			level = "error"
		}
	}
	if h.Metrics != nil {
		tags := map[string]string{"operation": "report_receive", "status": status}
		h.Metrics.IncCounter(ctx, "gateway.report_receive.total", 1, tags)
		h.Metrics.ObserveHistogram(ctx, "gateway.report_receive.duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
	}
	core.LogWithLevel(ctx, h.Logger, level, message, fields)
}

func statusCodeFor(err error) int {
	switch {
	case core.IsReportAuthenticationError(err):
		return http.StatusUnauthorized
	case core.IsReportPayloadError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func rejected(statusCode int) core.InboundResult {
	return core.InboundResult{Accepted: false, StatusCode: statusCode}
}

func writeReply(w http.ResponseWriter, statusCode int, message string) {
	body := map[string]any{"ok": statusCode == http.StatusOK}
	if message != "" {
		body["error"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

var _ http.Handler = (*ReportHandler)(nil)
