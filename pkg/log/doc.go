/*
Package log provides structured logging for meshpulse built on zerolog.

The package exposes a global Logger configured once at startup via Init,
plus With* helpers that derive child loggers carrying standard fields
(component, event_type, service_id, connection_id) so log lines from the
stream engine and feeds are uniformly queryable.

Console output (the default) is human readable; JSONOutput switches to
machine-parseable JSON for log shippers.
*/
package log
