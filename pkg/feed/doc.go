/*
Package feed provides consumer adapters between the stream engine and
presentation code.

ConnectionMetrics turns the shared metrics stream into per-connection
display values: each raw reading is varied by a deterministic seed
derived from the connection id, clamped into fixed display ranges,
appended to the bounded cache under that id, and exposed synchronously
via Snapshot alongside the cached series and a loading flag. Its
lifecycle follows UI visibility: Idle until a connection is selected,
Active while one is, back to Idle on deselect with the subscription
released every time.

StatusBoard aggregates the latest service and connection statuses from
the sparse status streams into maps keyed by entity id.
*/
package feed
