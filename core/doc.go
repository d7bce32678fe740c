// Package core contains the gateway domain model, the typed mapper, the error
// taxonomy and the API client. Transport and webhook adapters depend on this
// package; core must not depend on transport-specific or inbound adapters.
package core
