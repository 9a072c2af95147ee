package instance

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cachecast/cache-placement-optimizer/internal/logger"
)

// tokenReader yields whitespace-delimited integers from the input. The wire
// format is fully determined by the leading counts, so token order, not line
// structure, drives the parse.
type tokenReader struct {
	scanner *bufio.Scanner
}

func newTokenReader(r io.Reader) *tokenReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokenReader{scanner: s}
}

func (t *tokenReader) nextInt(field string) (int, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return 0, fmt.Errorf("reading %s: %w", field, err)
		}
		return 0, malformedf("unexpected end of input while reading %s", field)
	}
	n, err := strconv.Atoi(t.scanner.Text())
	if err != nil {
		return 0, malformedf("%s: %q is not an integer", field, t.scanner.Text())
	}
	return n, nil
}

// ParseFile reads and aggregates an instance from disk.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening instance file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an instance in the standard wire format:
//
//	V E R C X
//	size_0 ... size_{V-1}
//	E blocks of: dc_latency K, then K pairs of cache_id latency
//	R records of: video_id endpoint_id request_count
//
// Request records sharing an (endpoint, video) key are summed.
func Parse(r io.Reader) (*Instance, error) {
	tr := newTokenReader(r)

	var header [5]int
	for i, field := range []string{"video count", "endpoint count", "request count", "cache count", "cache capacity"} {
		n, err := tr.nextInt(field)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, malformedf("%s is negative (%d)", field, n)
		}
		header[i] = n
	}
	numVideos, numEndpoints, numRequests, numCaches, capacity := header[0], header[1], header[2], header[3], header[4]

	in := New(numVideos, numEndpoints, numCaches, capacity)

	for v := 0; v < numVideos; v++ {
		size, err := tr.nextInt(fmt.Sprintf("size of video %d", v))
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, malformedf("video %d has non-positive size %d", v, size)
		}
		in.VideoSizes[v] = size
	}

	for e := 0; e < numEndpoints; e++ {
		dcLatency, err := tr.nextInt(fmt.Sprintf("dc latency of endpoint %d", e))
		if err != nil {
			return nil, err
		}
		reachable, err := tr.nextInt(fmt.Sprintf("reachable cache count of endpoint %d", e))
		if err != nil {
			return nil, err
		}
		if reachable < 0 {
			return nil, malformedf("endpoint %d declares %d reachable caches", e, reachable)
		}
		latencies := make(map[int]int, reachable)
		for k := 0; k < reachable; k++ {
			cacheID, err := tr.nextInt(fmt.Sprintf("cache id %d of endpoint %d", k, e))
			if err != nil {
				return nil, err
			}
			latency, err := tr.nextInt(fmt.Sprintf("latency of cache %d at endpoint %d", cacheID, e))
			if err != nil {
				return nil, err
			}
			latencies[cacheID] = latency
		}
		if err := in.AddEndpoint(dcLatency, latencies); err != nil {
			return nil, err
		}
	}

	for i := 0; i < numRequests; i++ {
		video, err := tr.nextInt(fmt.Sprintf("video id of request %d", i))
		if err != nil {
			return nil, err
		}
		endpoint, err := tr.nextInt(fmt.Sprintf("endpoint id of request %d", i))
		if err != nil {
			return nil, err
		}
		count, err := tr.nextInt(fmt.Sprintf("count of request %d", i))
		if err != nil {
			return nil, err
		}
		if err := in.AddRequest(video, endpoint, count); err != nil {
			return nil, err
		}
	}

	logger.Log.Debug("Instance parsed",
		"videos", numVideos,
		"endpoints", numEndpoints,
		"rawRequests", numRequests,
		"aggregatedRequests", len(in.Requests),
		"caches", numCaches,
		"capacity", capacity)

	return in, nil
}
