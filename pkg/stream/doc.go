/*
Package stream implements the event emission and subscription engine at
the heart of meshpulse.

The engine multiplexes three event types (metrics, service_status and
connection_status), each with its own emission timer and subscriber set.
A timer for an event type exists if and only if the engine is running
and the type has at least one subscriber; timers are armed lazily on
first subscribe and torn down when the last subscriber leaves.

	┌──────────────────── STREAM ENGINE ───────────────────────┐
	│                                                           │
	│  Generator ──► tick ──► Event (typed, timestamped)        │
	│                  │                                        │
	│   metrics            every MetricsInterval, always        │
	│   service_status     every StatusUpdateInterval,          │
	│                      Bernoulli(p=0.10) per service id     │
	│   connection_status  every StatusUpdateInterval,          │
	│                      Bernoulli(p=0.05) per connection id  │
	│                  │                                        │
	│                  ▼                                        │
	│   fan-out: all subscribers of the event's type, in        │
	│   subscription order, synchronously                       │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

Faults are contained at the engine boundary: a panicking handler is
logged and skipped without disturbing the rest of the fan-out, and a
panicking generator turns the tick into a no-op while the timer keeps
its schedule.

Stop clears timers but preserves subscriptions; Start resumes delivery
to the same handlers. The Clock and random source are injectable, so
tests drive ticks with a virtual clock (see streamtest) and force
probability gates to 0 or 1.
*/
package stream
