/*
Package cache provides a generic bounded time-series cache.

Cache[T] stores an insertion-ordered sequence of items per string key,
capped at a configurable maximum (default 20). Appends beyond the cap
evict the oldest items first, giving each key a sliding window of the
most recent samples. Feeds use it to retain chart history per
connection id.

The cache is mutex-guarded so engine timer goroutines and snapshot
readers can interleave freely.
*/
package cache
