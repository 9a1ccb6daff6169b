// Package driving provides interfaces for primary/inbound adapters.
//
// The HTTP API and CLI consume the engine exclusively through these
// interfaces.
package driving
