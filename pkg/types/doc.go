/*
Package types defines the shared data model for meshpulse.

All cross-package value types live here: the closed Status enum for
services and connections, the synthetic MetricsReading sample produced
by the generator, the per-entity status update payloads carried by
stream events, and the display-ready DataPoint cached for chart series.

Types in this package are plain values with no behavior beyond
validation; they are safe to copy and retain.
*/
package types
