// Package topology models the simulated service graph: service and
// environment nodes plus the connections between services. Topologies
// come from the built-in default or from a validated YAML file; their
// id sets seed the stream engine's status ticks.
package topology
