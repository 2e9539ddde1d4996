package dot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// upstreamExchanger is the narrow interface answerOne needs from a DoH
// client. Kept narrow so tests can substitute a testify mock.
type upstreamExchanger interface {
	Exchange(ctx context.Context, rawQuery []byte) ([]byte, error)
}

// Upstream is a DNS-over-HTTPS client: it keeps a running-average latency
// and logs one Query() line per exchange (URL, duration, status). There's no
// UDP/TCP retry ladder or transport-swapping factory — a single HTTPS
// POST has nothing to retry onto within one exchange.
type Upstream struct {
	url        string
	httpClient *http.Client

	metricsLock         sync.Mutex
	numberOfRequests    uint64
	totalResponseTime   time.Duration
	averageResponseTime time.Duration
}

// NewUpstream builds a DoH client against url (e.g.
// "https://cloudflare-dns.com/dns-query"), per spec section 4.2 step 4.
func NewUpstream(url string, timeout time.Duration) *Upstream {
	return &Upstream{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Exchange POSTs rawQuery as application/dns-message and returns the
// upstream's response body untouched, per spec section 4.2 step 4: "return
// the upstream body untouched."
func (u *Upstream) Exchange(ctx context.Context, rawQuery []byte) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(rawQuery))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrUpstreamFailure, err)
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	resp, err := u.httpClient.Do(req)
	duration := time.Since(start)
	u.updateMetrics(duration)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	Query(fmt.Sprintf("doh exchange to %s took %s (status %d)", u.url, duration, resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrUpstreamFailure, err)
	}
	return body, nil
}

func (u *Upstream) updateMetrics(d time.Duration) {
	u.metricsLock.Lock()
	defer u.metricsLock.Unlock()
	u.numberOfRequests++
	u.totalResponseTime += d
	u.averageResponseTime = u.totalResponseTime / time.Duration(u.numberOfRequests)
}

// AverageResponseTime reports the running average DoH latency, for metrics.
func (u *Upstream) AverageResponseTime() time.Duration {
	u.metricsLock.Lock()
	defer u.metricsLock.Unlock()
	return u.averageResponseTime
}
