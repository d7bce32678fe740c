package gateway

import (
	"github.com/goliatone/go-telegram-gateway/core"
	"github.com/goliatone/go-telegram-gateway/transport"
	"github.com/goliatone/go-telegram-gateway/webhooks"
)

type Config = core.Config
type TransportConfig = core.TransportConfig
type WebhookConfig = core.WebhookConfig

type Option = core.Option

type Client = core.Client

type RequestStatus = core.RequestStatus
type DeliveryStatus = core.DeliveryStatus
type VerificationStatus = core.VerificationStatus
type DeliveryState = core.DeliveryState
type VerificationState = core.VerificationState
type SendVerificationMessageParameters = core.SendVerificationMessageParameters

type TransportInfo = core.TransportInfo
type TransportOptions = core.TransportOptions

type ReplayLedger = core.ReplayLedger
type ReportVerifier = webhooks.ReportVerifier
type ReportHandler = webhooks.ReportHandler
type ReportHandlerFunc = webhooks.ReportHandlerFunc
type ReportHandlerOption = webhooks.ReportHandlerOption

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithTransport        = core.WithTransport
	WithTransportFactory = core.WithTransportFactory
	WithIDGenerator      = core.WithIDGenerator
	WithNow              = core.WithNow

	WithReportLogger          = webhooks.WithReportLogger
	WithReportLoggerProvider  = webhooks.WithReportLoggerProvider
	WithReportMetricsRecorder = webhooks.WithReportMetricsRecorder
	WithMaxReportBodyBytes    = webhooks.WithMaxReportBodyBytes
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewClient builds a client backed by the net/http REST adapter unless
// WithTransport or WithTransportFactory says otherwise.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransportFactory(restTransport))
	all = append(all, opts...)
	return core.NewClient(cfg, all...)
}

// NewReportVerifier builds a verifier from the client config. ledger may be
// nil.
func NewReportVerifier(cfg Config, ledger ReplayLedger) (*ReportVerifier, error) {
	return webhooks.NewReportVerifier(webhooks.ReportVerifierConfig{
		Token:        cfg.Token,
		ReplayWindow: cfg.Webhook.ReplayWindow,
		Ledger:       ledger,
	})
}

// NewReportHandler builds the callback_url handler. Its logger is named after
// cfg.ServiceName unless an option overrides it.
func NewReportHandler(cfg Config, ledger ReplayLedger, handle ReportHandlerFunc, opts ...ReportHandlerOption) (*ReportHandler, error) {
	verifier, err := NewReportVerifier(cfg, ledger)
	if err != nil {
		return nil, err
	}
	all := make([]ReportHandlerOption, 0, len(opts)+1)
	all = append(all, webhooks.WithReportLoggerName(cfg.ServiceName))
	all = append(all, opts...)
	return webhooks.NewReportHandler(verifier, handle, all...), nil
}

func restTransport(cfg core.TransportConfig) core.TransportAdapter {
	return transport.NewRESTAdapterFromConfig(cfg)
}
