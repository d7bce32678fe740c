package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	MethodSendVerificationMessage   = "sendVerificationMessage"
	MethodCheckSendAbility          = "checkSendAbility"
	MethodCheckVerificationStatus   = "checkVerificationStatus"
	MethodRevokeVerificationMessage = "revokeVerificationMessage"
)

// Client calls the Telegram Gateway API. Calls are synchronous and never
// retried; cancellation and deadlines come from the context and the transport
// options.
type Client struct {
	config          Config
	token           string
	baseURL         string
	transport       TransportAdapter
	logger          Logger
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	idGenerator     func() string
	now             func() time.Time

	mu          sync.RWMutex
	options     TransportOptions
	lastOptions TransportOptions
	lastInfo    TransportInfo
}

type responseEnvelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type sendVerificationMessageRequest struct {
	PhoneNumber string `json:"phone_number"`
	SendVerificationMessageParameters
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.idGenerator == nil {
		builder.idGenerator = defaultClientBuilder(cfg).idGenerator
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	provider, logger := glog.Resolve(finalConfig.ServiceName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.logger == nil && provider != nil {
		if named := provider.GetLogger(finalConfig.ServiceName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	token := strings.TrimSpace(finalConfig.Token)
	if token == "" {
		return nil, NewBadInputError("core: api token is required", nil)
	}
	if builder.transport == nil && builder.transportFactory != nil {
		builder.transport = builder.transportFactory(finalConfig.Transport)
	}
	if builder.transport == nil {
		return nil, NewInternalError("core: transport adapter is required", nil)
	}

	return &Client{
		config:          finalConfig,
		token:           token,
		baseURL:         strings.TrimRight(strings.TrimSpace(finalConfig.BaseURL), "/") + "/",
		transport:       builder.transport,
		logger:          logger,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		idGenerator:     builder.idGenerator,
		now:             builder.now,
		options:         finalConfig.Transport.Options(),
	}, nil
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

// SendVerificationMessage sends a verification message to phoneNumber. Passing
// the RequestID of a previous CheckSendAbility call avoids a second charge.
func (c *Client) SendVerificationMessage(
	ctx context.Context,
	phoneNumber string,
	params SendVerificationMessageParameters,
) (RequestStatus, error) {
	if err := validateRequired("phone_number", phoneNumber); err != nil {
		return RequestStatus{}, err
	}
	if err := params.Validate(); err != nil {
		return RequestStatus{}, wrapValidationError(err, "core: invalid send parameters")
	}
	return c.requestStatus(ctx, MethodSendVerificationMessage, sendVerificationMessageRequest{
		PhoneNumber:                       strings.TrimSpace(phoneNumber),
		SendVerificationMessageParameters: params,
	})
}

// CheckSendAbility probes whether a message can be sent to phoneNumber. A
// positive answer may itself be charged.
func (c *Client) CheckSendAbility(ctx context.Context, phoneNumber string) (RequestStatus, error) {
	if err := validateRequired("phone_number", phoneNumber); err != nil {
		return RequestStatus{}, err
	}
	return c.requestStatus(ctx, MethodCheckSendAbility, map[string]string{
		"phone_number": strings.TrimSpace(phoneNumber),
	})
}

// CheckVerificationStatus loads the status of a request. A purely numeric code
// is forwarded so the API can validate what the user entered; anything else is
// dropped.
func (c *Client) CheckVerificationStatus(ctx context.Context, requestID string, code string) (RequestStatus, error) {
	if err := validateRequired("request_id", requestID); err != nil {
		return RequestStatus{}, err
	}
	payload := map[string]string{"request_id": strings.TrimSpace(requestID)}
	if IsNumericCode(code) {
		payload["code"] = strings.TrimSpace(code)
	}
	return c.requestStatus(ctx, MethodCheckVerificationStatus, payload)
}

// RevokeVerificationMessage reports whether the revocation request was
// accepted. Messages already delivered or read are not removed.
func (c *Client) RevokeVerificationMessage(ctx context.Context, requestID string) (bool, error) {
	if err := validateRequired("request_id", requestID); err != nil {
		return false, err
	}
	startedAt := c.now()
	result, info, err := c.call(ctx, MethodRevokeVerificationMessage, map[string]string{
		"request_id": strings.TrimSpace(requestID),
	})
	accepted := false
	if err == nil {
		accepted = truthy(result)
	}
	err = c.mapError(err)
	c.observeOperation(ctx, startedAt, MethodRevokeVerificationMessage, err, info.fields())
	return accepted, err
}

func (c *Client) requestStatus(ctx context.Context, method string, payload any) (RequestStatus, error) {
	startedAt := c.now()
	result, info, err := c.call(ctx, method, payload)
	var status RequestStatus
	if err == nil {
		status, err = DecodeRequestStatus(result)
		if err != nil {
			err = NewResponseDecodeError(err, info.fields())
		}
	}
	err = c.mapError(err)
	c.observeOperation(ctx, startedAt, method, err, info.fields())
	if err != nil {
		return RequestStatus{}, err
	}
	return status, nil
}

func (c *Client) call(ctx context.Context, method string, payload any) (json.RawMessage, TransportInfo, error) {
	if c == nil || c.transport == nil {
		return nil, TransportInfo{}, NewInternalError("core: client is not configured", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, TransportInfo{}, NewInternalError("core: encode request body: "+err.Error(), map[string]any{
			"operation": method,
		})
	}

	options := c.TransportOptions()
	callID := c.idGenerator()
	endpoint := c.baseURL + method
	headers := cloneHeaders(options.Headers)
	if options.UserAgent != "" {
		headers["User-Agent"] = options.UserAgent
	}
	headers["Content-Type"] = "application/json"
	headers["Authorization"] = "Bearer " + c.token
	headers["Content-Length"] = strconv.Itoa(len(body))

	startedAt := c.now()
	res, err := c.transport.Do(ctx, TransportRequest{
		Method:  http.MethodPost,
		URL:     endpoint,
		Headers: headers,
		Body:    body,
		Timeout: options.Timeout,
		Metadata: map[string]any{
			"call_id":   callID,
			"operation": method,
		},
	})
	info := TransportInfo{
		CallID:       callID,
		Operation:    method,
		Method:       http.MethodPost,
		URL:          endpoint,
		EffectiveURL: endpoint,
		StatusCode:   res.StatusCode,
		StartedAt:    startedAt,
		Duration:     c.now().Sub(startedAt),
	}
	if effective, ok := res.Metadata["effective_url"].(string); ok && strings.TrimSpace(effective) != "" {
		info.EffectiveURL = effective
	}
	c.recordDiagnostics(options, info)

	if err != nil {
		return nil, info, NewTransportError(err, info.fields())
	}
	if res.StatusCode == 0 {
		return nil, info, NewTransportError(nil, info.fields())
	}

	var envelope responseEnvelope
	if decodeErr := json.Unmarshal(res.Body, &envelope); decodeErr != nil || !envelope.OK {
		return nil, info, NewAPIError(res.StatusCode, envelope.Error, info.fields())
	}
	return envelope.Result, info, nil
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	if c == nil || c.errorMapper == nil {
		return err
	}
	if mapped := c.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

// truthy follows the API convention where any non-empty result means success.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed != "" && typed != "0"
	case []any:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	default:
		return true
	}
}
