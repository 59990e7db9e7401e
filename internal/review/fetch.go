package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrStatus is returned by HTTPFetcher for any response other than 200 OK.
var ErrStatus = errors.New("unexpected HTTP status")

// Fetcher downloads the image behind a record URL.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// DefaultFetchTimeout bounds a single preview download.
const DefaultFetchTimeout = 15 * time.Second

// HTTPFetcher fetches previews over HTTP(S) with fasthttp.
type HTTPFetcher struct {
	Timeout time.Duration
}

// Fetch performs a GET and returns the body of a 200 response.
func (f *HTTPFetcher) Fetch(url string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	status, body, err := fasthttp.GetTimeout(nil, url, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, status, url)
	}
	return body, nil
}
