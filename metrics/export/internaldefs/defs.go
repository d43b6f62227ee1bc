package internaldefs

import (
	goChmod "github.com/xvzf/goChmod"
)

// CounterDef binds a Manager counter to its exported name.
type CounterDef struct {
	ID   goChmod.MetricID
	Name string
	Help string
}

// HistogramDef binds a Manager histogram to its exported name.
type HistogramDef struct {
	ID   goChmod.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goChmod.MetricGrantedOwner, Name: "chmod_granted_owner_total", Help: "Requests admitted by the owner bit."},
	{ID: goChmod.MetricGrantedGroup, Name: "chmod_granted_group_total", Help: "Requests admitted by the group bit."},
	{ID: goChmod.MetricGrantedOther, Name: "chmod_granted_other_total", Help: "Requests admitted by the other bit."},
	{ID: goChmod.MetricDenied, Name: "chmod_denied_total", Help: "Rejected requests."},
	{ID: goChmod.MetricDeniedUnauthenticated, Name: "chmod_denied_unauthenticated_total", Help: "Rejected requests without an identity."},
	{ID: goChmod.MetricGroupCacheHit, Name: "chmod_group_cache_hit_total", Help: "Group verdicts served from cache."},
	{ID: goChmod.MetricGroupCacheMiss, Name: "chmod_group_cache_miss_total", Help: "Group verdicts not found in cache."},
	{ID: goChmod.MetricGroupLookupFailure, Name: "chmod_group_lookup_failure_total", Help: "Failed group resolver lookups."},
	{ID: goChmod.MetricCacheFailure, Name: "chmod_cache_failure_total", Help: "Verdict cache read or write errors."},
}

var HistogramDefs = []HistogramDef{
	{ID: goChmod.MetricAuthorizeLatency, Name: "chmod_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds are the upper bounds of the Manager latency buckets
// (10us to 25ms) in seconds.
var HistogramBounds = []string{
	"0.00001",
	"0.00005",
	"0.0001",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_00001",
	"0_00005",
	"0_0001",
	"0_0005",
	"0_001",
	"0_005",
	"0_025",
	"inf",
}

// NormalizeBuckets copies raw into a fixed bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the running totals that
// Prometheus "le" buckets expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
