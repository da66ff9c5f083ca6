// Package collector samples host resource and network counters on
// demand. Each Sampler owns whatever running state it needs (e.g. the
// prior CPU jiffy snapshot) to turn a cumulative counter into a rate
// on its next call.
package collector

import "context"

// Sampler is the narrow interface every counter source implements:
// name it, say whether it's enabled on this host, and produce one
// sample. Modeled on xtop's Collector interface
// (collector/collector.go: Name/Collect) but generalized so a caller
// can type-switch on the returned value instead of every sampler
// writing into a shared snapshot struct.
type Sampler interface {
	Name() string
	Enabled() bool
	Sample(ctx context.Context) (any, error)
}
