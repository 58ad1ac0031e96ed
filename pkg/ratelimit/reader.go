// Package ratelimit throttles copy throughput to a configured bandwidth.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// minBurst keeps reads reasonably sized at very low limits
const minBurst = 64 * 1024

// Limiter controls the rate of data transfer shared by every reader it wraps
type Limiter struct {
	limiter        *rate.Limiter
	bytesPerSecond int64
	burst          int
}

// NewLimiter creates a limiter for bytesPerSecond. A non-positive limit
// returns nil, which NewReader treats as unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := minBurst
	if bytesPerSecond > minBurst {
		burst = int(bytesPerSecond)
	}

	return &Limiter{
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
		bytesPerSecond: bytesPerSecond,
		burst:          burst,
	}
}

// BytesPerSecond returns the configured limit
func (l *Limiter) BytesPerSecond() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps an io.Reader with rate limiting
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

// Read reads at most one burst and then waits until the limiter admits the
// bytes actually read. Cancelling the context aborts the wait.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	if len(p) > r.limiter.burst {
		p = p[:r.limiter.burst]
	}

	n, err := r.reader.Read(p)
	if n > 0 {
		if waitErr := r.limiter.limiter.WaitN(r.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// ParseBandwidth parses limits such as "10M", "512KiB" or "1.5 GB" into
// bytes per second. An empty string or "0" means unlimited.
func ParseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/s"), "ps")
	if s == "" || s == "0" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bandwidth %q: %w", s, err)
	}
	return int64(n), nil
}
