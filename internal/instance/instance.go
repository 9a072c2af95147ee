// Package instance holds the in-memory problem model: videos, caches,
// endpoints and aggregated request counts, built once from a parsed input
// file and never mutated afterwards.
package instance

import (
	"fmt"
)

// Endpoint is a request-originating node. It always reaches the datacenter
// at DCLatency and reaches the caches listed in CacheLatencies; a cache
// absent from the map is unreachable from this endpoint.
type Endpoint struct {
	DCLatency      int
	CacheLatencies map[int]int // cache id -> latency
}

// RequestKey identifies one aggregated request group.
type RequestKey struct {
	Endpoint int
	Video    int
}

// Instance is the full problem: V videos with sizes, C caches sharing a
// single capacity X, E endpoints, and request counts aggregated by
// (endpoint, video).
type Instance struct {
	NumVideos     int
	NumEndpoints  int
	NumCaches     int
	CacheCapacity int

	VideoSizes []int
	Endpoints  []Endpoint

	// Requests maps (endpoint, video) to the summed request count. Multiple
	// raw records for the same key are additive; the objective is linear in
	// the count, so summation here is load-bearing.
	Requests map[RequestKey]int
}

// MalformedInstanceError reports a structural parse failure or an index
// outside its declared range. It aborts the run before model construction.
type MalformedInstanceError struct {
	Reason string
}

func (e *MalformedInstanceError) Error() string {
	return "malformed instance: " + e.Reason
}

func malformedf(format string, args ...any) error {
	return &MalformedInstanceError{Reason: fmt.Sprintf(format, args...)}
}

// New allocates an empty instance with the given dimensions.
func New(videos, endpoints, caches, capacity int) *Instance {
	return &Instance{
		NumVideos:     videos,
		NumEndpoints:  endpoints,
		NumCaches:     caches,
		CacheCapacity: capacity,
		VideoSizes:    make([]int, videos),
		Endpoints:     make([]Endpoint, 0, endpoints),
		Requests:      make(map[RequestKey]int),
	}
}

// AddEndpoint appends an endpoint, validating that every reachable cache id
// is within [0, NumCaches).
func (in *Instance) AddEndpoint(dcLatency int, cacheLatencies map[int]int) error {
	if len(in.Endpoints) >= in.NumEndpoints {
		return malformedf("more endpoint blocks than the declared %d", in.NumEndpoints)
	}
	for c := range cacheLatencies {
		if c < 0 || c >= in.NumCaches {
			return malformedf("endpoint %d references cache %d outside [0,%d)",
				len(in.Endpoints), c, in.NumCaches)
		}
	}
	in.Endpoints = append(in.Endpoints, Endpoint{
		DCLatency:      dcLatency,
		CacheLatencies: cacheLatencies,
	})
	return nil
}

// AddRequest aggregates one raw request record into the instance. Duplicate
// (endpoint, video) records sum their counts. Negative counts are rejected;
// zero counts are kept but never produce a serving variable downstream.
func (in *Instance) AddRequest(video, endpoint, count int) error {
	if video < 0 || video >= in.NumVideos {
		return malformedf("request references video %d outside [0,%d)", video, in.NumVideos)
	}
	if endpoint < 0 || endpoint >= in.NumEndpoints {
		return malformedf("request references endpoint %d outside [0,%d)", endpoint, in.NumEndpoints)
	}
	if count < 0 {
		return malformedf("request for video %d at endpoint %d has negative count %d", video, endpoint, count)
	}
	in.Requests[RequestKey{Endpoint: endpoint, Video: video}] += count
	return nil
}
