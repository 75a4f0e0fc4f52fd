package backends

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 2 << 20

// fetchRate paces outbound provider requests on top of the cascade's
// jittered delays, so bursts across concurrent entities stay polite.
var fetchRate = rate.NewLimiter(rate.Every(time.Second), 2)

// userAgents is the rotation pool. Desktop browser strings keep HTML
// endpoints serving their full markup.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// agentPool rotates user agents across calls.
type agentPool struct {
	next atomic.Uint64
}

func (p *agentPool) pick() string {
	n := p.next.Add(1)
	return userAgents[n%uint64(len(userAgents))]
}

// fetcher is the shared HTTP layer under every adapter.
type fetcher struct {
	client *http.Client
	agents agentPool
}

func newFetcher(client *http.Client) *fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &fetcher{client: client}
}

// get performs one provider request, mapping HTTP outcomes onto the backend
// error taxonomy.
func (f *fetcher) get(ctx context.Context, backend, rawURL string) ([]byte, error) {
	if err := fetchRate.Wait(ctx); err != nil {
		return nil, &NetworkError{Backend: backend, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{Backend: backend, Err: err}
	}
	req.Header.Set("User-Agent", f.agents.pick())
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Backend: backend, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if readErr != nil {
			return nil, &NetworkError{Backend: backend, Err: readErr}
		}
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return nil, &BlockedError{Backend: backend, StatusCode: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &NetworkError{
			Backend: backend,
			Err:     fmt.Errorf("server error: status %d", resp.StatusCode),
		}
	default:
		return nil, &ParseError{
			Backend: backend,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
}
