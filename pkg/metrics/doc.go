/*
Package metrics provides Prometheus metrics and health reporting for meshpulse.

All metrics are defined as package-level collectors and registered with the
default registry at init. The stream engine increments emission, fault and
subscriber metrics as it runs; feeds update cache occupancy gauges. Handler
exposes everything for scraping, and the health registry backs the /health
and /livez endpoints of the run command.

Metric categories:

	Engine:  events emitted, handler faults, generator faults,
	         subscribers, active timers, fan-out duration
	Cache:   key count, item count
*/
package metrics
