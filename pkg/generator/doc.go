// Package generator produces synthetic metrics and status values for the
// stream engine. The Synthetic implementation takes an explicit seed or
// *rand.Rand so simulations and tests are reproducible.
package generator
