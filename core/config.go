package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL              = "https://gatewayapi.telegram.org/"
	DefaultTransportTimeout     = 30 * time.Second
	DefaultMaxResponseBodyBytes = int64(1 << 20)
	DefaultServiceName          = "gateway"
)

type TransportConfig struct {
	Timeout              time.Duration     `koanf:"timeout" mapstructure:"timeout"`
	UserAgent            string            `koanf:"user_agent" mapstructure:"user_agent"`
	Headers              map[string]string `koanf:"headers" mapstructure:"headers"`
	InsecureSkipVerify   bool              `koanf:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	MaxResponseBodyBytes int64             `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type WebhookConfig struct {
	// ReplayWindow bounds the accepted distance between a report timestamp and
	// now. Zero disables the check.
	ReplayWindow time.Duration `koanf:"replay_window" mapstructure:"replay_window"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Token       string          `koanf:"token" mapstructure:"token"`
	BaseURL     string          `koanf:"base_url" mapstructure:"base_url"`
	Transport   TransportConfig `koanf:"transport" mapstructure:"transport"`
	Webhook     WebhookConfig   `koanf:"webhook" mapstructure:"webhook"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: DefaultServiceName,
		BaseURL:     DefaultBaseURL,
		Transport: TransportConfig{
			Timeout:              DefaultTransportTimeout,
			Headers:              map[string]string{},
			MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		},
	}
}

// Validate checks structural settings. The token is checked when a client is
// built, so partially loaded configs can still be layered.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: base_url %q is invalid", base)
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport.timeout must not be negative")
	}
	if c.Transport.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: transport.max_response_body_bytes must not be negative")
	}
	if c.Webhook.ReplayWindow < 0 {
		return fmt.Errorf("core: webhook.replay_window must not be negative")
	}
	return nil
}

// TransportOptions are the per-call settings handed to the transport adapter.
type TransportOptions struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

func (c TransportConfig) Options() TransportOptions {
	return TransportOptions{
		Timeout:   c.Timeout,
		UserAgent: strings.TrimSpace(c.UserAgent),
		Headers:   cloneHeaders(c.Headers),
	}
}

func (o TransportOptions) Clone() TransportOptions {
	return TransportOptions{
		Timeout:   o.Timeout,
		UserAgent: o.UserAgent,
		Headers:   cloneHeaders(o.Headers),
	}
}

func cloneHeaders(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		out[trimmed] = strings.TrimSpace(value)
	}
	return out
}
