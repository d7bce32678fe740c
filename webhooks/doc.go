// Package webhooks authenticates and parses delivery reports pushed by the
// gateway to a callback_url.
//
// A report is trusted only after the HMAC over the raw bytes received matches
// the X-Request-Signature header; the body is parsed afterwards.
package webhooks
