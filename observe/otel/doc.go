// Package otel reserves a home for an OpenTelemetry loop observer.
// It emits nothing yet; [Nop] stands in without adding dependencies.
package otel
