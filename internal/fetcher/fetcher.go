// Package fetcher resolves remote source URLs into bytes.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/wb-go/wbf/zlog"
)

const maxRedirects = 10

// Fetcher downloads source images over HTTP, following redirects up to a
// bounded hop count.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given request timeout.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Fetch downloads the content at url and returns the bytes along with a
// suggested filename taken from the Content-Disposition header or, failing
// that, the final URL path.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request for %s: %w", url, err)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("fetch %s: unexpected status code %d", url, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response from %s: %w", url, err)
	}

	filename := suggestedFilename(res)

	zlog.Logger.Debug().
		Str("url", url).
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("fetched source")

	return data, filename, nil
}

func suggestedFilename(res *http.Response) string {
	if cd := res.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return path.Base(name)
			}
		}
	}

	// res.Request reflects the final URL after redirects.
	if name := path.Base(res.Request.URL.Path); name != "." && name != "/" {
		return name
	}

	return ""
}
