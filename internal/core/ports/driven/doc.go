// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// The engine core depends only on these interfaces; concrete adapters
// live under internal/adapters/driven.
package driven
