package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type GetOptions struct {
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration

	// Extra attempts after a retriable failure (5xx, transport error).
	Retries int
}

// A thing capable of downloading a document, optionally with caching.
type Downloader interface {
	Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)
}

// Gets a document. Doesn't cache. Provided as convenience for
// implementing custom Downloaders.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	var body []byte
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		for k, v := range headers {
			req.Header.Add(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("making request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if resp.StatusCode >= 500 {
				return err
			}
			// 4xx won't get better on retry.
			return backoff.Permanent(err)
		}

		var reader io.Reader = resp.Body
		if options.MaxSize > 0 {
			reader = io.LimitReader(resp.Body, int64(options.MaxSize))
		}

		body, err = io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(options.Retries)),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}

	return body, nil
}
