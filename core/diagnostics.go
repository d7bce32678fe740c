package core

import (
	"strings"
	"time"
)

// TransportInfo describes the most recent round trip made by a Client.
type TransportInfo struct {
	CallID       string
	Operation    string
	Method       string
	URL          string
	EffectiveURL string
	StatusCode   int
	StartedAt    time.Time
	Duration     time.Duration
}

func (i TransportInfo) fields() map[string]any {
	fields := map[string]any{}
	if i.CallID != "" {
		fields["call_id"] = i.CallID
	}
	if i.Operation != "" {
		fields["operation"] = i.Operation
	}
	if i.Method != "" {
		fields["method"] = i.Method
	}
	if i.URL != "" {
		fields["url"] = i.URL
	}
	if i.EffectiveURL != "" && i.EffectiveURL != i.URL {
		fields["effective_url"] = i.EffectiveURL
	}
	if i.StatusCode != 0 {
		fields["status_code"] = i.StatusCode
	}
	return fields
}

// TransportOptions returns a copy of the options applied to the next call.
func (c *Client) TransportOptions() TransportOptions {
	if c == nil {
		return TransportOptions{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options.Clone()
}

// SetTransportOptions replaces the options applied to subsequent calls.
func (c *Client) SetTransportOptions(options TransportOptions) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = TransportOptions{
		Timeout:   options.Timeout,
		UserAgent: strings.TrimSpace(options.UserAgent),
		Headers:   cloneHeaders(options.Headers),
	}
}

// SetTransportHeader adds an extra request header. An empty value removes it.
// Content-Type, Authorization and Content-Length are always set by the client.
func (c *Client) SetTransportHeader(name string, value string) {
	if c == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.options.Headers == nil {
		c.options.Headers = map[string]string{}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(c.options.Headers, name)
		return
	}
	c.options.Headers[name] = value
}

// LastTransportOptions returns the options used by the most recent call.
func (c *Client) LastTransportOptions() TransportOptions {
	if c == nil {
		return TransportOptions{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastOptions.Clone()
}

// LastTransportInfo returns what is known about the most recent call, whether
// it succeeded or not. The zero value means no call has been made.
func (c *Client) LastTransportInfo() TransportInfo {
	if c == nil {
		return TransportInfo{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastInfo
}

func (c *Client) recordDiagnostics(options TransportOptions, info TransportInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastOptions = options.Clone()
	c.lastInfo = info
}
