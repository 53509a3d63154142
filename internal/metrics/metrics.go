// Package metrics exposes process counters over expvar together with an
// optional localhost debug listener.
package metrics

import "expvar"

var (
	RequestRetries   = expvar.NewInt("request_retries")
	StreamReconnects = expvar.NewInt("stream_reconnects")
	SnapshotSaves    = expvar.NewInt("snapshot_saves")
	SnapshotLoads    = expvar.NewInt("snapshot_loads")
)
