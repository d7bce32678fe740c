package transport

import (
	"crypto/tls"
	"net/http"

	"github.com/goliatone/go-telegram-gateway/core"
)

// NewHTTPClient returns a client for gateway calls. Deadlines are applied per
// request from the transport options, so the client itself has no timeout.
func NewHTTPClient(cfg core.TransportConfig) *http.Client {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{}
	}
	rt := base.Clone()
	if cfg.InsecureSkipVerify {
		if rt.TLSClientConfig == nil {
			rt.TLSClientConfig = &tls.Config{}
		}
		rt.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // opt-in for local gateway stubs
	}
	return &http.Client{Transport: rt}
}
